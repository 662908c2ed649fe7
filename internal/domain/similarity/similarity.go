// Package similarity ranks attribute vectors by Euclidean distance to a query.
//
// Two index implementations share one contract:
//   - Forest: a random-hyperplane forest answering approximate queries
//     (the default; built per query from the candidate pool).
//   - Exact: a brute-force scan.
//
// Both return neighbours ordered by (distance, ordinal) so ties keep the
// candidate-pool order.
package similarity

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/okian/lookalike/internal/domain/model"
	"gonum.org/v1/gonum/floats"
)

// Neighbor is one ranked candidate. Ordinal indexes the vectors passed to Build.
type Neighbor struct {
	Ordinal  int
	Distance float64
}

// Index answers top-k queries over a fixed set of vectors.
type Index interface {
	// Len returns the number of indexed vectors.
	Len() int
	// Dim returns the vector dimension, 0 for an empty index.
	Dim() int
	// Query returns min(k, Len()) neighbours of q ordered by ascending distance.
	Query(ctx context.Context, q model.Vector, k int) ([]Neighbor, error)
}

// Builder constructs an Index from an ordered sequence of vectors.
type Builder interface {
	Build(ctx context.Context, vectors []model.Vector) (Index, error)
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b model.Vector) float64 {
	return floats.Distance(a, b, 2)
}

// checkVectors returns the common dimension of vectors. An empty input or a
// zero dimension yields 0 with no error; the caller builds an empty index.
func checkVectors(vectors []model.Vector) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d values, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return dim, nil
}

func checkQuery(q model.Vector, dim int) error {
	if len(q) != dim {
		return fmt.Errorf("%w: query has %d values, index has %d", ErrDimensionMismatch, len(q), dim)
	}
	return nil
}

// rank computes exact distances from q to the given ordinals and returns the
// k closest ordered by (distance, ordinal).
func rank(vectors []model.Vector, q model.Vector, ordinals []int, k int) []Neighbor {
	out := make([]Neighbor, len(ordinals))
	for i, o := range ordinals {
		out[i] = Neighbor{Ordinal: o, Distance: Distance(q, vectors[o])}
	}
	slices.SortFunc(out, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	if k < len(out) {
		out = out[:k]
	}
	return out
}
