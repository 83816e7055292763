// Package cache provides the optional assessment cache. Analyses are never
// cached unless the caller injects a store; each analysis call is otherwise a
// fresh fusion over fresh signals.
package cache

import (
	"sync"
	"time"
)

// item is a cached value with expiration
type item struct {
	value     interface{}
	expiresAt time.Time
}

func (i *item) expired() bool {
	return time.Now().After(i.expiresAt)
}

// Store is a thread-safe TTL cache keyed by code unit ID
type Store struct {
	mu    sync.RWMutex
	items map[string]*item
	ttl   time.Duration
}

// NewStore creates a cache with the specified TTL and starts its cleanup loop
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		items: make(map[string]*item),
		ttl:   ttl,
	}

	go s.cleanup()

	return s
}

func (s *Store) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for key, it := range s.items {
			if it.expired() {
				delete(s.items, key)
			}
		}
		s.mu.Unlock()
	}
}

// Get retrieves a cached value
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, exists := s.items[key]
	if !exists || it.expired() {
		return nil, false
	}

	return it.value, true
}

// Set stores a value under the key
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = &item{
		value:     value,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Delete removes a key
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
}

// Size returns the number of cached entries
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Stats returns cache statistics
func (s *Store) Stats() map[string]interface{} {
	return map[string]interface{}{
		"entries":     s.Size(),
		"ttl_seconds": s.ttl.Seconds(),
	}
}
