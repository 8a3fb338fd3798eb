package repository

import "errors"

var (
	// ErrStoreUnavailable wraps every backend failure (connection refused, timeouts).
	ErrStoreUnavailable = errors.New("pending store unavailable")
	ErrCorruptEntry     = errors.New("pending entry could not be decoded")
)
