package settings

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	fallback  Reader
	overrides map[string]bool
}

// NewMemoryStore keeps overrides in process. Flags never set fall back to the given reader,
// or to false when fallback is nil.
func NewMemoryStore(fallback Reader) Store {
	return &memoryStore{
		fallback:  fallback,
		overrides: make(map[string]bool),
	}
}

func (s *memoryStore) DebugMode(ctx context.Context) bool {
	if v, ok := s.get(FlagDebugMode); ok {
		return v
	}
	return s.fallback != nil && s.fallback.DebugMode(ctx)
}

func (s *memoryStore) AudioEnabled(ctx context.Context) bool {
	if v, ok := s.get(FlagAudioEnabled); ok {
		return v
	}
	return s.fallback != nil && s.fallback.AudioEnabled(ctx)
}

func (s *memoryStore) SetDebugMode(_ context.Context, on bool) error {
	s.set(FlagDebugMode, on)
	return nil
}

func (s *memoryStore) SetAudioEnabled(_ context.Context, on bool) error {
	s.set(FlagAudioEnabled, on)
	return nil
}

func (s *memoryStore) get(flag string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.overrides[flag]
	return v, ok
}

func (s *memoryStore) set(flag string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[flag] = on
}
