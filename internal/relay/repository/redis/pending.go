package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"telegram-task-relay/internal/model"
	"telegram-task-relay/internal/relay/repository"
	pkgLog "telegram-task-relay/pkg/log"
)

type implRepository struct {
	rdb    goredis.UniversalClient
	prefix string
	l      pkgLog.Logger
}

// New creates a Redis-backed pending repository. Keys are prefix+requestID and expire natively.
func New(rdb goredis.UniversalClient, prefix string, l pkgLog.Logger) repository.PendingRepository {
	if prefix == "" {
		prefix = repository.DefaultKeyPrefix
	}
	return &implRepository{rdb: rdb, prefix: prefix, l: l}
}

func (r *implRepository) key(id string) string {
	return r.prefix + id
}

func (r *implRepository) Put(ctx context.Context, id string, req model.PendingRequest, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = repository.DefaultTTL
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode pending request: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", repository.ErrStoreUnavailable, id, err)
	}
	return nil
}

func (r *implRepository) Get(ctx context.Context, id string) (model.PendingRequest, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	return r.decode(ctx, id, raw, err)
}

func (r *implRepository) Remove(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %w", repository.ErrStoreUnavailable, id, err)
	}
	return nil
}

// Take relies on GETDEL (Redis >= 6.2) so read and delete happen in one command.
func (r *implRepository) Take(ctx context.Context, id string) (model.PendingRequest, bool, error) {
	raw, err := r.rdb.GetDel(ctx, r.key(id)).Bytes()
	return r.decode(ctx, id, raw, err)
}

func (r *implRepository) decode(ctx context.Context, id string, raw []byte, err error) (model.PendingRequest, bool, error) {
	if errors.Is(err, goredis.Nil) {
		return model.PendingRequest{}, false, nil
	}
	if err != nil {
		return model.PendingRequest{}, false, fmt.Errorf("%w: get %s: %w", repository.ErrStoreUnavailable, id, err)
	}

	var req model.PendingRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		r.l.Errorf(ctx, "internal.relay.repository.redis: corrupt entry %s: %v", id, err)
		return model.PendingRequest{}, false, fmt.Errorf("%w: %s: %w", repository.ErrCorruptEntry, id, err)
	}
	return req, true, nil
}
