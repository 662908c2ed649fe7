package similarity

import "errors"

// Sentinel error kinds for index construction and queries.
var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
