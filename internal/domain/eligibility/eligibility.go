// Package eligibility narrows a player pool to the candidates that satisfy a
// caller's constraints.
package eligibility

import (
	"math"
	"slices"

	"github.com/okian/lookalike/internal/domain/model"
)

// AllLeagues is the league sentinel that disables the league constraint.
const AllLeagues = "All"

// Constraints holds the conjunctive eligibility rules for one query.
type Constraints struct {
	// ExcludeName removes every record carrying this name (the query target).
	ExcludeName string
	MaxAge      int
	// Leagues lists accepted leagues; containing AllLeagues accepts any league.
	Leagues   []string
	MaxValue  float64
	MaxWage   float64
	Positions model.PositionSet
}

// Validate rejects malformed constraint values instead of letting them filter
// everything out.
func (c Constraints) Validate() error {
	switch {
	case c.MaxAge < 0:
		return NewValidationError("max_age", "must not be negative")
	case math.IsNaN(c.MaxValue) || c.MaxValue < 0:
		return NewValidationError("max_value", "must be a non-negative number")
	case math.IsNaN(c.MaxWage) || c.MaxWage < 0:
		return NewValidationError("max_wage", "must be a non-negative number")
	case len(c.Leagues) == 0:
		return NewValidationError("leagues", "at least one league (or \"All\") is required")
	case len(c.Positions) == 0:
		return NewValidationError("positions", "at least one position is required")
	}
	return nil
}

// AnyLeague reports whether the league constraint is disabled.
func (c Constraints) AnyLeague() bool {
	return slices.Contains(c.Leagues, AllLeagues)
}

// Match reports whether a single record passes every constraint.
func Match(p model.Player, c Constraints) bool {
	if p.Name == c.ExcludeName {
		return false
	}
	if p.Age > c.MaxAge {
		return false
	}
	if !c.AnyLeague() && !slices.Contains(c.Leagues, p.League) {
		return false
	}
	if p.Value > c.MaxValue || p.Wage > c.MaxWage {
		return false
	}
	return p.HasAnyPosition(c.Positions)
}

// Filter returns the records of pool that satisfy c, in their original order.
// The input is not modified. An empty result is valid.
func Filter(pool []model.Player, c Constraints) []model.Player {
	// The league check is hoisted so large pools avoid a linear scan per record.
	anyLeague := c.AnyLeague()
	var leagues map[string]struct{}
	if !anyLeague {
		leagues = make(map[string]struct{}, len(c.Leagues))
		for _, l := range c.Leagues {
			leagues[l] = struct{}{}
		}
	}

	out := make([]model.Player, 0)
	for _, p := range pool {
		if p.Name == c.ExcludeName || p.Age > c.MaxAge {
			continue
		}
		if !anyLeague {
			if _, ok := leagues[p.League]; !ok {
				continue
			}
		}
		if p.Value > c.MaxValue || p.Wage > c.MaxWage {
			continue
		}
		if !p.HasAnyPosition(c.Positions) {
			continue
		}
		out = append(out, p)
	}
	return out
}
