package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/lookalike/internal/domain/eligibility"
	"github.com/okian/lookalike/internal/domain/model"
)

// Query holds the caller supplied part of a similarity search. The position
// constraint always comes from the target player.
type Query struct {
	MaxAge   int
	Leagues  []string
	MaxValue float64
	MaxWage  float64
	K        int
}

// Result is a ranked answer to a similarity query. Matches and Distances
// run in parallel, nearest first. Memoized results share their slices, so
// callers must treat them as read-only.
type Result struct {
	Target    model.Player
	Matches   []model.Player
	Distances []float64
}

func (q Query) constraints(target model.Player) eligibility.Constraints {
	return eligibility.Constraints{
		ExcludeName: target.Name,
		MaxAge:      q.MaxAge,
		Leagues:     q.Leagues,
		MaxValue:    q.MaxValue,
		MaxWage:     q.MaxWage,
		Positions:   model.NewPositionSet(target.Positions...),
	}
}

func (s *Service) validate(q Query) error {
	if q.K < 0 || q.K > s.maxK {
		return eligibility.NewValidationError("k", fmt.Sprintf("must be between 0 and %d", s.maxK))
	}
	// Positions come from the target, which is resolved later.
	c := q.constraints(model.Player{Positions: model.Positions})
	return c.Validate()
}

// cacheKey identifies a query result for one dataset version.
type cacheKey struct {
	target   string
	maxAge   int
	leagues  string
	maxValue float64
	maxWage  float64
	k        int
	version  uint64
}

func newCacheKey(target string, q Query, version uint64) cacheKey {
	leagues := slices.Clone(q.Leagues)
	slices.Sort(leagues)
	leagues = slices.Compact(leagues)
	return cacheKey{
		target:   target,
		maxAge:   q.MaxAge,
		leagues:  strings.Join(leagues, "\x00"),
		maxValue: q.MaxValue,
		maxWage:  q.MaxWage,
		k:        q.K,
		version:  version,
	}
}
