// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config filled with defaults.
// - Load layers defaults, an optional YAML file and LOOKALIKE_* env vars.
// - Validate reports problems wrapped in ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Index kinds accepted by IndexKind.
const (
	IndexForest = "forest"
	IndexExact  = "exact"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the player CSV loaded on startup and on SIGHUP.
	DatasetPath string `koanf:"dataset_path"`

	// IndexKind selects the similarity index: "forest" or "exact".
	IndexKind string `koanf:"index_kind"`

	// IndexTrees, IndexLeafSize and IndexSearchK tune the forest.
	IndexTrees    int `koanf:"index_trees"`
	IndexLeafSize int `koanf:"index_leaf_size"`
	IndexSearchK  int `koanf:"index_search_k"`

	// IndexSeed fixes hyperplane selection so rankings are reproducible.
	IndexSeed uint64 `koanf:"index_seed"`

	// IndexExactThreshold answers pools this small with an exact scan.
	IndexExactThreshold int `koanf:"index_exact_threshold"`

	// BuildWorkers bounds concurrent tree construction.
	BuildWorkers int `koanf:"build_workers"`

	// CacheSize bounds the memoized query results; 0 disables caching.
	CacheSize int `koanf:"cache_size"`

	// MaxK caps the number of similar players a query may request.
	MaxK int `koanf:"max_k"`

	// Defaults applied to omitted request fields.
	DefaultK        int      `koanf:"default_k"`
	DefaultMaxAge   int      `koanf:"default_max_age"`
	DefaultMaxValue float64  `koanf:"default_max_value"`
	DefaultMaxWage  float64  `koanf:"default_max_wage"`
	DefaultLeagues  []string `koanf:"default_leagues"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		IndexKind:           IndexForest,
		IndexTrees:          10,
		IndexLeafSize:       16,
		IndexSearchK:        0,
		IndexSeed:           42,
		IndexExactThreshold: 0,
		BuildWorkers:        runtime.NumCPU(),
		CacheSize:           256,
		MaxK:                20,
		DefaultK:            5,
		DefaultMaxAge:       30,
		DefaultMaxValue:     7_500_000,
		DefaultMaxWage:      50_000,
		DefaultLeagues: []string{
			"Spain Primera Division",
			"Italian Serie A",
			"French Ligue 1",
			"English Premier League",
			"German 1. Bundesliga",
			"Holland Eredivisie",
		},
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr must not be empty")
	}
	if c.IndexKind != IndexForest && c.IndexKind != IndexExact {
		problems = append(problems, fmt.Sprintf("index_kind must be %q or %q", IndexForest, IndexExact))
	}
	if c.IndexTrees < 1 {
		problems = append(problems, "index_trees must be positive")
	}
	if c.IndexLeafSize < 1 {
		problems = append(problems, "index_leaf_size must be positive")
	}
	if c.IndexSearchK < 0 || c.IndexExactThreshold < 0 || c.CacheSize < 0 {
		problems = append(problems, "index_search_k, index_exact_threshold and cache_size must not be negative")
	}
	if c.BuildWorkers < 1 {
		problems = append(problems, "build_workers must be positive")
	}
	if c.MaxK < 1 {
		problems = append(problems, "max_k must be positive")
	}
	if c.DefaultK < 0 || c.DefaultK > c.MaxK {
		problems = append(problems, "default_k must be within [0, max_k]")
	}
	if c.DefaultMaxAge < 0 || c.DefaultMaxValue < 0 || c.DefaultMaxWage < 0 {
		problems = append(problems, "default ceilings must not be negative")
	}
	if len(c.DefaultLeagues) == 0 {
		problems = append(problems, "default_leagues must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
