package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"telegram-task-relay/internal/model"
	"telegram-task-relay/internal/relay/repository"
)

// DefaultSize bounds the number of in-flight requests kept in memory.
const DefaultSize = 10000

type entry struct {
	req       model.PendingRequest
	expiresAt time.Time
}

type implRepository struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, entry]
	now   func() time.Time
}

// New creates a single-process pending repository. maxTTL is the longest TTL any Put may ask for;
// shorter per-entry TTLs are enforced on read.
func New(size int, maxTTL time.Duration) repository.PendingRepository {
	if size <= 0 {
		size = DefaultSize
	}
	if maxTTL <= 0 {
		maxTTL = repository.DefaultTTL
	}
	return &implRepository{
		cache: expirable.NewLRU[string, entry](size, nil, maxTTL),
		now:   time.Now,
	}
}

func (r *implRepository) Put(_ context.Context, id string, req model.PendingRequest, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = repository.DefaultTTL
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Add(id, entry{req: req, expiresAt: r.now().Add(ttl)})
	return nil
}

func (r *implRepository) Get(_ context.Context, id string) (model.PendingRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.lookup(id)
	return req, ok, nil
}

func (r *implRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(id)
	return nil
}

func (r *implRepository) Take(_ context.Context, id string) (model.PendingRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.lookup(id)
	if ok {
		r.cache.Remove(id)
	}
	return req, ok, nil
}

// lookup must be called with mu held.
func (r *implRepository) lookup(id string) (model.PendingRequest, bool) {
	e, ok := r.cache.Get(id)
	if !ok {
		return model.PendingRequest{}, false
	}
	if !r.now().Before(e.expiresAt) {
		r.cache.Remove(id)
		return model.PendingRequest{}, false
	}
	return e.req, true
}
