// Package service wires the dataset store, the eligibility filter and the
// similarity index into the operations served by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/lookalike/internal/adapters/loader"
	repository "github.com/okian/lookalike/internal/adapters/repository"
	"github.com/okian/lookalike/internal/domain/eligibility"
	"github.com/okian/lookalike/internal/domain/model"
	"github.com/okian/lookalike/internal/domain/similarity"
	"github.com/okian/lookalike/pkg/logger"
	"github.com/okian/lookalike/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	DefaultMaxK      = 20
	DefaultCacheSize = 256
	defaultTrees     = 10
)

// Service answers similar-player queries over the loaded dataset.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	builder similarity.Builder
	cache   *lru.Cache[cacheKey, Result]
	loader  *loader.Loader

	// Configuration
	indexKind   string
	indexOpts   []similarity.Option
	trees       int
	cacheSize   int
	maxK        int
	datasetPath string

	// State
	started   bool
	queries   atomic.Int64
	cacheHits atomic.Int64
	lastBuild atomic.Int64 // nanoseconds

	logger logger.Logger
}

// New constructs a Service. The dataset is empty until Start, Reload or
// LoadFile fills it.
func New(opts ...Option) *Service {
	s := &Service{
		indexKind: IndexForest,
		trees:     defaultTrees,
		cacheSize: DefaultCacheSize,
		maxK:      DefaultMaxK,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.builder == nil {
		if s.indexKind == IndexExact {
			s.builder = similarity.NewExactBuilder()
		} else {
			s.builder = similarity.NewForestBuilder(s.indexOpts...)
		}
	}
	if s.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		s.cache, _ = lru.New[cacheKey, Result](s.cacheSize)
	}
	s.loader = loader.New(loader.WithLogger(s.logger.Named("loader")))

	return s
}

// Start loads the configured dataset, if any, and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting similarity service...")

	if s.datasetPath != "" {
		if err := s.loadFile(ctx, s.datasetPath); err != nil {
			return err
		}
	}

	s.started = true
	s.logger.Info(ctx, "similarity service started",
		logger.String("index", s.indexKind),
		logger.Int("players", s.store.Count(ctx)),
		logger.Int("maxK", s.maxK),
		logger.Int("cacheSize", s.cacheSize),
	)
	return nil
}

// Stop drops memoized results and marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.purgeCache()
	s.started = false
	s.logger.Info(context.Background(), "similarity service stopped")
}

// SimilarPlayers returns up to q.K players most similar to the named target
// among those passing the query constraints, nearest first.
func (s *Service) SimilarPlayers(ctx context.Context, targetName string, q Query) ([]model.Player, error) {
	res, err := s.Similar(ctx, targetName, q)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// Similar is SimilarPlayers with the resolved target and match distances.
func (s *Service) Similar(ctx context.Context, targetName string, q Query) (Result, error) {
	start := time.Now()
	s.queries.Add(1)

	res, outcome, err := s.similar(ctx, targetName, q)

	elapsed := float64(time.Since(start).Nanoseconds()) / 1e6
	metrics.RecordQuery(outcome)
	metrics.RecordQueryLatency(elapsed)
	if err != nil {
		metrics.RecordErrorByComponent("service", outcome)
		metrics.RecordErrorLatency("service", outcome, elapsed)
		s.logger.Debug(ctx, "similarity query failed",
			logger.String("target", targetName),
			logger.String("outcome", outcome),
			logger.Error(err))
		return Result{}, err
	}
	metrics.RecordResultsReturned(len(res.Matches))
	return res, nil
}

func (s *Service) similar(ctx context.Context, targetName string, q Query) (Result, string, error) {
	if err := s.validate(q); err != nil {
		return Result{}, "invalid", err
	}

	version := s.store.Version()
	target, err := s.store.Get(ctx, targetName)
	if err != nil {
		return Result{}, "not_found", err
	}

	key := newCacheKey(target.Name, q, version)
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			s.cacheHits.Add(1)
			metrics.RecordCacheHit()
			return res, "cache_hit", nil
		}
		metrics.RecordCacheMiss()
	}

	res := Result{Target: target, Matches: []model.Player{}, Distances: []float64{}}
	if q.K == 0 {
		return res, "empty", nil
	}

	pool := eligibility.Filter(s.store.All(ctx), q.constraints(target))
	metrics.RecordCandidatePoolSize(len(pool))
	if len(pool) == 0 {
		s.remember(key, res)
		return res, "empty", nil
	}

	neighbors, err := s.rank(ctx, pool, target.Attributes, q.K)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, "cancelled", err
		}
		return Result{}, "index_error", fmt.Errorf("rank candidates for %q: %w", target.Name, err)
	}

	res.Matches = make([]model.Player, len(neighbors))
	res.Distances = make([]float64, len(neighbors))
	for i, n := range neighbors {
		res.Matches[i] = pool[n.Ordinal]
		res.Distances[i] = n.Distance
	}

	// A reload between resolving the target and reading the pool would mix
	// two datasets; serve the answer but do not memoize it.
	if s.store.Version() == version {
		s.remember(key, res)
	}
	return res, "ok", nil
}

// rank builds a fresh index over pool and queries it with target.
func (s *Service) rank(ctx context.Context, pool []model.Player, target model.Vector, k int) ([]similarity.Neighbor, error) {
	vectors := make([]model.Vector, len(pool))
	for i, p := range pool {
		vectors[i] = p.Attributes
	}

	buildStart := time.Now()
	idx, err := s.builder.Build(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	buildTime := time.Since(buildStart)
	s.lastBuild.Store(int64(buildTime))
	metrics.RecordIndexBuildLatency(float64(buildTime.Nanoseconds()) / 1e6)

	queryStart := time.Now()
	neighbors, err := idx.Query(ctx, target, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	metrics.RecordIndexQueryLatency(float64(time.Since(queryStart).Nanoseconds()) / 1e6)
	return neighbors, nil
}

func (s *Service) remember(key cacheKey, res Result) {
	if s.cache == nil {
		return
	}
	s.cache.Add(key, res)
	metrics.UpdateCacheEntries(s.cache.Len())
}

func (s *Service) purgeCache() {
	if s.cache == nil {
		return
	}
	s.cache.Purge()
	metrics.UpdateCacheEntries(0)
}

// Reload swaps in a new dataset and drops every memoized result. On error
// the previous dataset keeps serving.
func (s *Service) Reload(ctx context.Context, players []model.Player) error {
	if err := s.store.Replace(ctx, players); err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	s.purgeCache()
	s.logger.Info(ctx, "dataset reloaded",
		logger.Int("players", len(players)),
		logger.Any("version", s.store.Version()))
	return nil
}

// LoadFile decodes the CSV dataset at path and reloads it.
func (s *Service) LoadFile(ctx context.Context, path string) error {
	return s.loadFile(ctx, path)
}

func (s *Service) loadFile(ctx context.Context, path string) error {
	players, err := s.loader.LoadFile(ctx, path)
	if err != nil {
		metrics.RecordDatasetReloadError()
		return fmt.Errorf("load dataset: %w", err)
	}
	return s.Reload(ctx, players)
}

// Player returns the record loaded under name.
func (s *Service) Player(ctx context.Context, name string) (model.Player, error) {
	return s.store.Get(ctx, name)
}

// Leagues returns the distinct leagues in the dataset, sorted.
func (s *Service) Leagues(ctx context.Context) []string {
	return s.store.Leagues(ctx)
}

// Names returns up to limit player names starting with prefix, compared
// case-insensitively, in alphabetical order. A non-positive limit returns
// every match.
func (s *Service) Names(ctx context.Context, prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []string
	for _, n := range s.store.Names(ctx) {
		if strings.HasPrefix(strings.ToLower(n), prefix) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// MaxK returns the largest K a query may request.
func (s *Service) MaxK() int { return s.maxK }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"indexKind":      s.indexKind,
		"trees":          s.trees,
		"maxK":           s.maxK,
		"cacheSize":      s.cacheSize,
		"queries":        s.queries.Load(),
		"cacheHits":      s.cacheHits.Load(),
		"lastBuildMs":    float64(s.lastBuild.Load()) / 1e6,
		"players":        s.store.Count(ctx),
		"leagues":        len(s.store.Leagues(ctx)),
		"datasetVersion": s.store.Version(),
	}
	if s.cache != nil {
		stats["cacheEntries"] = s.cache.Len()
	}
	return stats
}
