package repository

import "time"

const (
	DefaultKeyPrefix = "relay:pending:"
	DefaultTTL       = 3600 * time.Second
)
