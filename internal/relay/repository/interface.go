package repository

import (
	"context"
	"time"

	"telegram-task-relay/internal/model"
)

// PendingRepository is the ephemeral, TTL-bounded store of in-flight requests.
// Implementations are safe for concurrent use; no ordering is guaranteed across IDs.
type PendingRepository interface {
	// Put stores req under id for ttl. An existing entry with the same id is overwritten.
	Put(ctx context.Context, id string, req model.PendingRequest, ttl time.Duration) error

	// Get returns the entry for id. A miss is (zero, false, nil).
	Get(ctx context.Context, id string) (model.PendingRequest, bool, error)

	// Remove deletes id. Removing a missing id is not an error.
	Remove(ctx context.Context, id string) error

	// Take atomically reads and removes id, so at most one caller observes an entry.
	Take(ctx context.Context, id string) (model.PendingRequest, bool, error)
}
