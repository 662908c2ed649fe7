package loader

import "errors"

// ErrMalformedRow is returned when a CSV row cannot be decoded into a player.
var ErrMalformedRow = errors.New("malformed row")
