package api

import (
	service "github.com/okian/lookalike/internal/app"
	"github.com/okian/lookalike/internal/config"
	"github.com/okian/lookalike/pkg/logger"
)

const defaultMaxListLimit = 500

// Defaults fills the fields a similarity request leaves out.
type Defaults struct {
	MaxAge   int
	Leagues  []string
	MaxValue float64
	MaxWage  float64
	K        int
}

// DefaultsFromConfig takes the request defaults from cfg.
func DefaultsFromConfig(cfg *config.Config) Defaults {
	return Defaults{
		MaxAge:   cfg.DefaultMaxAge,
		Leagues:  cfg.DefaultLeagues,
		MaxValue: cfg.DefaultMaxValue,
		MaxWage:  cfg.DefaultMaxWage,
		K:        cfg.DefaultK,
	}
}

// DefaultQuery returns the defaults of a stock configuration.
func DefaultQuery() Defaults {
	return DefaultsFromConfig(config.New())
}

func (d Defaults) query() service.Query {
	return service.Query{
		MaxAge:   d.MaxAge,
		Leagues:  d.Leagues,
		MaxValue: d.MaxValue,
		MaxWage:  d.MaxWage,
		K:        d.K,
	}
}

type serverConfig struct {
	defaults     Defaults
	maxListLimit int
	logger       logger.Logger
}

// Option configures the Server.
type Option func(*serverConfig)

// WithDefaults sets the values used for omitted request fields.
func WithDefaults(d Defaults) Option {
	return func(c *serverConfig) {
		c.defaults = d
	}
}

// WithMaxListLimit caps the limit accepted by GET /players.
func WithMaxListLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxListLimit = n
		}
	}
}

// WithLogger sets the logger used for request logs.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
