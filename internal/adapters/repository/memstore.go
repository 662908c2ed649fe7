package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lookalike/internal/domain/model"
	"github.com/okian/lookalike/pkg/logger"
	"github.com/okian/lookalike/pkg/metrics"
)

// snapshot is an immutable view of the dataset. Readers load it atomically and
// never take a lock.
type snapshot struct {
	players []model.Player
	byName  map[string]int // name -> ordinal of first record
	names   []string
	leagues []string
	version uint64
}

var emptySnapshot = &snapshot{byName: map[string]int{}}

// MemoryStore is an in-memory Store. Replace builds a fresh snapshot and swaps
// it in; records inside a snapshot are never mutated.
type MemoryStore struct {
	writeMu  sync.Mutex // serializes Replace
	snapshot atomic.Pointer[snapshot]
	logger   logger.Logger
}

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}

	s.snapshot.Store(emptySnapshot)
	metrics.UpdateDatasetRecords(0)
	return s
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, name string) (model.Player, error) {
	snap := s.snapshot.Load()
	i, ok := snap.byName[strings.TrimSpace(name)]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Player{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return snap.players[i], nil
}

// All implements Store.All.
func (s *MemoryStore) All(ctx context.Context) []model.Player {
	return s.snapshot.Load().players
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context) int {
	return len(s.snapshot.Load().players)
}

// Names implements Store.Names.
func (s *MemoryStore) Names(ctx context.Context) []string {
	return s.snapshot.Load().names
}

// Leagues implements Store.Leagues.
func (s *MemoryStore) Leagues(ctx context.Context) []string {
	return s.snapshot.Load().leagues
}

// Version implements Store.Version.
func (s *MemoryStore) Version() uint64 {
	return s.snapshot.Load().version
}

// Replace implements Store.Replace. The input slice is copied.
func (s *MemoryStore) Replace(ctx context.Context, players []model.Player) error {
	start := time.Now()
	for i, p := range players {
		if err := p.Validate(); err != nil {
			metrics.RecordDatasetReloadError()
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := &snapshot{
		players: slices.Clone(players),
		byName:  make(map[string]int, len(players)),
		names:   make([]string, 0, len(players)),
		version: s.snapshot.Load().version + 1,
	}
	leagues := make(map[string]struct{})
	for i, p := range next.players {
		if _, dup := next.byName[p.Name]; !dup {
			next.byName[p.Name] = i
			next.names = append(next.names, p.Name)
		}
		leagues[p.League] = struct{}{}
	}
	next.leagues = make([]string, 0, len(leagues))
	for l := range leagues {
		next.leagues = append(next.leagues, l)
	}
	slices.Sort(next.leagues)

	s.snapshot.Store(next)

	metrics.UpdateDatasetRecords(len(next.players))
	metrics.RecordDatasetReload()
	s.logger.Info(ctx, "dataset replaced",
		logger.Int("records", len(next.players)),
		logger.Int("leagues", len(next.leagues)),
		logger.Any("version", next.version),
		logger.Float64("durationMs", float64(time.Since(start).Nanoseconds())/1e6),
	)
	return nil
}
