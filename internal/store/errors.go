package store

import "errors"

// ErrNotFound indicates a missing or expired session lookup.
var ErrNotFound = errors.New("record not found")
