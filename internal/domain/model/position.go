package model

import (
	"fmt"
	"strings"
)

// Position is a short pitch position code.
type Position string

// Recognised position codes.
const (
	LW  Position = "LW"
	LS  Position = "LS"
	ST  Position = "ST"
	RW  Position = "RW"
	LF  Position = "LF"
	CF  Position = "CF"
	RF  Position = "RF"
	CAM Position = "CAM"
	LM  Position = "LM"
	CM  Position = "CM"
	RM  Position = "RM"
	CDM Position = "CDM"
	LWB Position = "LWB"
	LB  Position = "LB"
	CB  Position = "CB"
	RB  Position = "RB"
	RWB Position = "RWB"
	GK  Position = "GK"
)

// Positions lists every recognised code, attackers first.
var Positions = []Position{LW, LS, ST, RW, LF, CF, RF, CAM, LM, CM, RM, CDM, LWB, LB, CB, RB, RWB, GK}

var knownPositions = func() map[Position]struct{} {
	m := make(map[Position]struct{}, len(Positions))
	for _, p := range Positions {
		m[p] = struct{}{}
	}
	return m
}()

// Valid reports whether p is a recognised code.
func (p Position) Valid() bool {
	_, ok := knownPositions[p]
	return ok
}

func (p Position) String() string { return string(p) }

// ParsePosition parses a single code, ignoring case and surrounding spaces.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPosition, s)
	}
	return p, nil
}

// ParsePositions parses a comma separated list such as "ST,CF". Order is kept
// and duplicates dropped. Unrecognised codes are an error, as is an empty list.
func ParsePositions(s string) ([]Position, error) {
	parts := strings.Split(s, ",")
	out := make([]Position, 0, len(parts))
	seen := make(map[Position]struct{}, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := ParsePosition(part)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no position in %q", ErrUnknownPosition, s)
	}
	return out, nil
}

// PositionSet is an unordered set of positions used for eligibility checks.
type PositionSet map[Position]struct{}

// NewPositionSet builds a set from the given codes.
func NewPositionSet(ps ...Position) PositionSet {
	s := make(PositionSet, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s PositionSet) Contains(p Position) bool {
	_, ok := s[p]
	return ok
}

// Intersects reports whether any of ps is in the set.
func (s PositionSet) Intersects(ps []Position) bool {
	for _, p := range ps {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

// Slice returns the members in the canonical Positions order.
func (s PositionSet) Slice() []Position {
	out := make([]Position, 0, len(s))
	for _, p := range Positions {
		if s.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}
