package storage

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 4096

type cacheEntry struct {
	value   string
	present bool
}

// CachedStore fronts a backend with a bounded read cache. Writes go to the
// backend and then drop the cached key, so the next read fetches it again.
//
// A read that misses only fills the cache when no write finished while it
// was reading from the backend. Otherwise it could park a value older than
// the one just written.
type CachedStore struct {
	backend Store
	cache   *lru.Cache[string, cacheEntry]

	mu    sync.Mutex
	epoch uint64
}

func NewCachedStore(backend Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("error creating store cache: %w", err)
	}
	return &CachedStore{backend: backend, cache: cache}, nil
}

func (s *CachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	e, hit := s.cache.Get(key)
	start := s.epoch
	s.mu.Unlock()
	if hit {
		return e.value, e.present, nil
	}

	v, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	if s.epoch == start {
		s.cache.Add(key, cacheEntry{value: v, present: ok})
	}
	s.mu.Unlock()
	return v, ok, nil
}

func (s *CachedStore) Set(ctx context.Context, key, value string) error {
	err := s.backend.Set(ctx, key, value)
	s.forget(key)
	return err
}

func (s *CachedStore) Clear(ctx context.Context, key string) error {
	err := s.backend.Clear(ctx, key)
	s.forget(key)
	return err
}

// Invalidate drops every cached entry and returns how many were dropped.
// Other writers of the same backend become visible after this.
func (s *CachedStore) Invalidate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	n := s.cache.Len()
	s.cache.Purge()
	return n
}

// forget runs after every write, failed or not. A failed write may still
// have reached the backend.
func (s *CachedStore) forget(key string) {
	s.mu.Lock()
	s.epoch++
	s.cache.Remove(key)
	s.mu.Unlock()
}
