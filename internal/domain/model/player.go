// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
)

// Player is a normalized player record. Records are built once by the loader
// and never mutated afterwards; share them by value.
type Player struct {
	Name      string     // transliterated to ASCII
	Age       int        // years
	League    string     // league display name
	Positions []Position // preferred first, never empty
	Value     float64    // transfer value, EUR
	Wage      float64    // weekly wage, EUR
	Contract  string     // e.g. "2023"
	// Attributes follows AttributeSchema.
	Attributes Vector

	// Display-only fields, never part of similarity.
	PhotoURL  string
	Teams     string
	Overall   int
	Potential int
	Traits    string
}

// Validate checks the invariants the engine relies on.
func (p Player) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrSchema)
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: %s has negative age %d", ErrSchema, p.Name, p.Age)
	}
	if !nonNegative(p.Value) || !nonNegative(p.Wage) {
		return fmt.Errorf("%w: %s has invalid value/wage", ErrSchema, p.Name)
	}
	if len(p.Positions) == 0 {
		return fmt.Errorf("%w: %s has no positions", ErrSchema, p.Name)
	}
	for _, pos := range p.Positions {
		if !pos.Valid() {
			return fmt.Errorf("%w: %s: %w", ErrSchema, p.Name, ErrUnknownPosition)
		}
	}
	if err := ValidateAttributes(p.Attributes); err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	return nil
}

// HasAnyPosition reports whether the player plays any position in set.
func (p Player) HasAnyPosition(set PositionSet) bool {
	return set.Intersects(p.Positions)
}

func nonNegative(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}
