package model

import (
	"fmt"
	"math"
)

// AttributeCount is the dimension of every player's attribute vector.
const AttributeCount = 34

// AttributeSchema names the skill attributes in vector order. Every Vector
// handed to the similarity index follows this ordering.
var AttributeSchema = [AttributeCount]string{
	"Crossing",
	"Finishing",
	"HeadingAccuracy",
	"ShortPassing",
	"Volleys",
	"Dribbling",
	"Curve",
	"FKAccuracy",
	"LongPassing",
	"BallControl",
	"Acceleration",
	"SprintSpeed",
	"Agility",
	"Reactions",
	"Balance",
	"ShotPower",
	"Jumping",
	"Stamina",
	"Strength",
	"LongShots",
	"Aggression",
	"Interceptions",
	"Positioning",
	"Vision",
	"Penalties",
	"Composure",
	"DefensiveAwareness",
	"StandingTackle",
	"SlidingTackle",
	"GKDiving",
	"GKHandling",
	"GKKicking",
	"GKPositioning",
	"GKReflexes",
}

// Vector is an ordered sequence of attribute scores.
type Vector []float64

// AttributeIndex returns the vector position of the named attribute.
func AttributeIndex(name string) (int, bool) {
	for i, n := range AttributeSchema {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// ValidateAttributes checks that v conforms to AttributeSchema: exact length
// and finite, non-negative scores.
func ValidateAttributes(v Vector) error {
	if len(v) != AttributeCount {
		return fmt.Errorf("%w: attribute vector has %d values, want %d", ErrSchema, len(v), AttributeCount)
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return fmt.Errorf("%w: attribute %s has invalid value %v", ErrSchema, AttributeSchema[i], x)
		}
	}
	return nil
}
