package model

import "errors"

// Sentinel error kinds for player records.
var (
	ErrSchema          = errors.New("record does not match attribute schema")
	ErrUnknownPosition = errors.New("unknown position")
)
