package service

import (
	repository "github.com/okian/lookalike/internal/adapters/repository"
	"github.com/okian/lookalike/internal/domain/similarity"
	"github.com/okian/lookalike/pkg/logger"
)

// Index kinds accepted by WithIndexKind.
const (
	IndexForest = "forest"
	IndexExact  = "exact"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the dataset store. Defaults to an empty MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithIndexKind selects the index built per query: IndexForest or IndexExact.
func WithIndexKind(kind string) Option {
	return func(s *Service) {
		if kind == IndexForest || kind == IndexExact {
			s.indexKind = kind
		}
	}
}

// WithIndexBuilder overrides the index builder entirely; index tuning
// options are ignored when it is set.
func WithIndexBuilder(b similarity.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithTrees sets the number of trees in the forest index.
func WithTrees(n int) Option {
	return func(s *Service) {
		s.indexOpts = append(s.indexOpts, similarity.WithTrees(n))
		if n > 0 {
			s.trees = n
		}
	}
}

// WithLeafSize sets the maximum leaf size of the forest index.
func WithLeafSize(n int) Option {
	return func(s *Service) {
		s.indexOpts = append(s.indexOpts, similarity.WithLeafSize(n))
	}
}

// WithSearchK sets how many candidates a forest query inspects.
func WithSearchK(n int) Option {
	return func(s *Service) {
		s.indexOpts = append(s.indexOpts, similarity.WithSearchK(n))
	}
}

// WithSeed sets the forest seed.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.indexOpts = append(s.indexOpts, similarity.WithSeed(seed))
	}
}

// WithWorkers bounds the goroutines used to grow trees.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.indexOpts = append(s.indexOpts, similarity.WithWorkers(n))
	}
}

// WithExactThreshold answers pools at or below n with an exact scan.
func WithExactThreshold(n int) Option {
	return func(s *Service) {
		s.indexOpts = append(s.indexOpts, similarity.WithExactThreshold(n))
	}
}

// WithCacheSize sets the number of memoized query results. Zero disables
// the cache.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithMaxK caps the number of neighbours a query may ask for.
func WithMaxK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.maxK = k
		}
	}
}

// WithDatasetPath makes Start load the dataset from path.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}
