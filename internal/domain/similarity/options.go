package similarity

// Option applies a configuration option to the ForestBuilder.
type Option func(*ForestBuilder)

// WithTrees sets the number of trees in the forest.
func WithTrees(n int) Option {
	return func(b *ForestBuilder) {
		if n > 0 {
			b.trees = n
		}
	}
}

// WithLeafSize sets the largest number of items kept in a leaf.
func WithLeafSize(n int) Option {
	return func(b *ForestBuilder) {
		if n > 0 {
			b.leafSize = n
		}
	}
}

// WithSearchK sets how many distinct candidates a query gathers before
// re-ranking. Zero means trees*k. It is never allowed below k.
func WithSearchK(n int) Option {
	return func(b *ForestBuilder) {
		if n >= 0 {
			b.searchK = n
		}
	}
}

// WithSeed sets the seed for hyperplane selection.
func WithSeed(seed uint64) Option {
	return func(b *ForestBuilder) {
		b.seed = seed
	}
}

// WithWorkers bounds the number of trees built concurrently.
func WithWorkers(n int) Option {
	return func(b *ForestBuilder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithExactThreshold answers pools of at most n vectors with an exact scan.
func WithExactThreshold(n int) Option {
	return func(b *ForestBuilder) {
		if n >= 0 {
			b.exactThreshold = n
		}
	}
}
