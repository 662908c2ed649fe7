package loader

import "github.com/okian/lookalike/pkg/logger"

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load summaries.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithSkipInvalid makes the loader log and skip rows that fail to decode
// instead of aborting the whole load.
func WithSkipInvalid(skip bool) Option {
	return func(ld *Loader) {
		ld.skipInvalid = skip
	}
}
