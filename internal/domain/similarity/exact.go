package similarity

import (
	"context"

	"github.com/okian/lookalike/internal/domain/model"
)

// ExactBuilder builds brute-force indices.
type ExactBuilder struct{}

// NewExactBuilder returns a Builder producing exact indices.
func NewExactBuilder() *ExactBuilder { return &ExactBuilder{} }

// Build implements Builder.
func (ExactBuilder) Build(ctx context.Context, vectors []model.Vector) (Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim, err := checkVectors(vectors)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return &Exact{}, nil
	}
	return &Exact{vectors: vectors, dim: dim}, nil
}

// Exact scans every vector on each query.
type Exact struct {
	vectors []model.Vector
	dim     int
}

// Len implements Index.
func (e *Exact) Len() int { return len(e.vectors) }

// Dim implements Index.
func (e *Exact) Dim() int { return e.dim }

// Query implements Index.
func (e *Exact) Query(ctx context.Context, q model.Vector, k int) ([]Neighbor, error) {
	if k <= 0 || len(e.vectors) == 0 {
		return []Neighbor{}, nil
	}
	if err := checkQuery(q, e.dim); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := make([]int, len(e.vectors))
	for i := range all {
		all[i] = i
	}
	return rank(e.vectors, q, all, k), nil
}
