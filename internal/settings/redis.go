package settings

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cast"

	pkgLog "telegram-task-relay/pkg/log"
)

// DefaultKeyPrefix namespaces flag keys in Redis.
const DefaultKeyPrefix = "relay:settings:"

type redisStore struct {
	rdb      goredis.UniversalClient
	prefix   string
	fallback Reader
	l        pkgLog.Logger
}

// NewRedisStore shares flag overrides between relay instances. A missing key, or an
// unreachable Redis, falls back to the given reader.
func NewRedisStore(rdb goredis.UniversalClient, prefix string, fallback Reader, l pkgLog.Logger) Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &redisStore{rdb: rdb, prefix: prefix, fallback: fallback, l: l}
}

func (s *redisStore) DebugMode(ctx context.Context) bool {
	if v, ok := s.get(ctx, FlagDebugMode); ok {
		return v
	}
	return s.fallback != nil && s.fallback.DebugMode(ctx)
}

func (s *redisStore) AudioEnabled(ctx context.Context) bool {
	if v, ok := s.get(ctx, FlagAudioEnabled); ok {
		return v
	}
	return s.fallback != nil && s.fallback.AudioEnabled(ctx)
}

func (s *redisStore) SetDebugMode(ctx context.Context, on bool) error {
	return s.set(ctx, FlagDebugMode, on)
}

func (s *redisStore) SetAudioEnabled(ctx context.Context, on bool) error {
	return s.set(ctx, FlagAudioEnabled, on)
}

func (s *redisStore) get(ctx context.Context, flag string) (bool, bool) {
	raw, err := s.rdb.Get(ctx, s.prefix+flag).Result()
	if errors.Is(err, goredis.Nil) {
		return false, false
	}
	if err != nil {
		s.l.Warnf(ctx, "internal.settings.redis: read %s failed, using fallback: %v", flag, err)
		return false, false
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		s.l.Warnf(ctx, "internal.settings.redis: invalid value %q for %s", raw, flag)
		return false, false
	}
	return v, true
}

func (s *redisStore) set(ctx context.Context, flag string, on bool) error {
	if err := s.rdb.Set(ctx, s.prefix+flag, cast.ToString(on), 0).Err(); err != nil {
		return fmt.Errorf("settings: set %s: %w", flag, err)
	}
	return nil
}
