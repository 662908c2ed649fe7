package similarity

import (
	"container/heap"
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/okian/lookalike/internal/domain/model"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Default forest configuration constants.
const (
	defaultTrees      = 10
	defaultLeafSize   = 16
	defaultSeed       = 42
	splitAttempts     = 3  // tries to find two distinct pivot points
	cancelCheckPeriod = 64 // heap pops between context checks
)

// ForestBuilder builds random-hyperplane forests.
type ForestBuilder struct {
	trees          int
	leafSize       int
	searchK        int
	seed           uint64
	workers        int
	exactThreshold int
}

// NewForestBuilder creates a ForestBuilder with configuration options.
func NewForestBuilder(opts ...Option) *ForestBuilder {
	b := &ForestBuilder{
		trees:    defaultTrees,
		leafSize: defaultLeafSize,
		seed:     defaultSeed,
		workers:  runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build implements Builder. Trees are built concurrently; each draws from its
// own PCG stream keyed by (seed, tree number), so the forest does not depend
// on scheduling.
func (b *ForestBuilder) Build(ctx context.Context, vectors []model.Vector) (Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim, err := checkVectors(vectors)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return &Forest{}, nil
	}
	if len(vectors) <= b.exactThreshold {
		return &Exact{vectors: vectors, dim: dim}, nil
	}

	f := &Forest{
		vectors:  vectors,
		dim:      dim,
		searchK:  b.searchK,
		leafSize: b.leafSize,
		roots:    make([]*node, b.trees),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for t := range b.trees {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(b.seed, uint64(t)))
			items := make([]int, len(vectors))
			for i := range items {
				items[i] = i
			}
			root, err := f.grow(gctx, rng, items)
			if err != nil {
				return err
			}
			f.roots[t] = root
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// node is either a split (normal != nil or alternate) or a leaf (items != nil).
type node struct {
	normal []float64
	offset float64
	// alternate marks a split made by position rather than by hyperplane;
	// queries descend both sides with equal priority.
	alternate   bool
	left, right *node
	items       []int
}

func (n *node) leaf() bool { return n.items != nil }

// margin is the signed distance of x from the hyperplane; normals are unit
// length so margins from different nodes compare on one scale.
func (n *node) margin(x model.Vector) float64 {
	return floats.Dot(n.normal, x) + n.offset
}

// Forest is an approximate nearest-neighbour index made of random
// hyperplane trees. It is immutable once built and safe for concurrent
// queries.
type Forest struct {
	vectors  []model.Vector
	dim      int
	searchK  int
	leafSize int
	roots    []*node
}

// Len implements Index.
func (f *Forest) Len() int { return len(f.vectors) }

// Dim implements Index.
func (f *Forest) Dim() int { return f.dim }

// Trees returns the number of trees in the forest.
func (f *Forest) Trees() int { return len(f.roots) }

// grow splits items recursively until every leaf holds at most leafSize items.
func (f *Forest) grow(ctx context.Context, rng *rand.Rand, items []int) (*node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(items) <= f.leafSize {
		return &node{items: items}, nil
	}

	n := &node{}
	left, right := f.hyperplaneSplit(rng, n, items)
	if len(left) == 0 || len(right) == 0 {
		// All points fell on one side (duplicates or collinear pivots).
		n.normal, n.offset, n.alternate = nil, 0, true
		left, right = alternateSplit(items)
	}

	var err error
	if n.left, err = f.grow(ctx, rng, left); err != nil {
		return nil, err
	}
	if n.right, err = f.grow(ctx, rng, right); err != nil {
		return nil, err
	}
	return n, nil
}

// hyperplaneSplit picks two distinct pivots and partitions items by the
// perpendicular bisector between them. It fills n.normal and n.offset.
func (f *Forest) hyperplaneSplit(rng *rand.Rand, n *node, items []int) (left, right []int) {
	normal := make([]float64, f.dim)
	for range splitAttempts {
		i := rng.IntN(len(items))
		j := rng.IntN(len(items) - 1)
		if j >= i {
			j++
		}
		p, q := f.vectors[items[i]], f.vectors[items[j]]
		floats.SubTo(normal, p, q)
		norm := floats.Norm(normal, 2)
		if norm == 0 {
			continue
		}
		floats.Scale(1/norm, normal)
		n.normal = normal
		n.offset = -(floats.Dot(normal, p) + floats.Dot(normal, q)) / 2
		break
	}
	if n.normal == nil {
		return nil, nil
	}

	left = make([]int, 0, len(items)/2)
	right = make([]int, 0, len(items)/2)
	for _, it := range items {
		if n.margin(f.vectors[it]) > 0 {
			right = append(right, it)
		} else {
			left = append(left, it)
		}
	}
	return left, right
}

func alternateSplit(items []int) (left, right []int) {
	half := len(items) / 2
	return items[:half:half], items[half:]
}

// Query implements Index. Trees are walked best-first by hyperplane margin
// until at least searchK distinct candidates are found (or every leaf has been
// visited); candidates are then ranked by exact distance.
func (f *Forest) Query(ctx context.Context, q model.Vector, k int) ([]Neighbor, error) {
	if k <= 0 || len(f.vectors) == 0 {
		return []Neighbor{}, nil
	}
	if err := checkQuery(q, f.dim); err != nil {
		return nil, err
	}

	searchK := f.searchK
	if searchK == 0 {
		searchK = len(f.roots) * k
	}
	searchK = max(searchK, k)

	pq := make(frontier, 0, len(f.roots)*2)
	for _, r := range f.roots {
		pq = append(pq, frontierItem{priority: math.Inf(1), node: r})
	}
	heap.Init(&pq)

	seen := make([]bool, len(f.vectors))
	candidates := make([]int, 0, searchK+f.leafSize)
	for pops := 0; pq.Len() > 0 && len(candidates) < searchK; pops++ {
		if pops%cancelCheckPeriod == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		top := heap.Pop(&pq).(frontierItem)
		n := top.node
		if n.leaf() {
			for _, it := range n.items {
				if !seen[it] {
					seen[it] = true
					candidates = append(candidates, it)
				}
			}
			continue
		}
		if n.alternate {
			heap.Push(&pq, frontierItem{priority: top.priority, node: n.left})
			heap.Push(&pq, frontierItem{priority: top.priority, node: n.right})
			continue
		}
		m := n.margin(q)
		heap.Push(&pq, frontierItem{priority: math.Min(top.priority, m), node: n.right})
		heap.Push(&pq, frontierItem{priority: math.Min(top.priority, -m), node: n.left})
	}

	return rank(f.vectors, q, candidates, k), nil
}

type frontierItem struct {
	priority float64
	node     *node
}

// frontier is a max-heap on priority.
type frontier []frontierItem

func (h frontier) Len() int           { return len(h) }
func (h frontier) Less(i, j int) bool { return h[i].priority > h[j].priority }
func (h frontier) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *frontier) Push(x any)        { *h = append(*h, x.(frontierItem)) }
func (h *frontier) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
