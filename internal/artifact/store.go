// Package artifact keeps generated audio in memory until its one and only
// download.
package artifact

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	data      []byte
	createdAt time.Time
}

// Store maps opaque tokens to encoded audio payloads. Take deletes on read, so
// a token is served at most once.
type Store struct {
	mu       sync.Mutex
	items    map[string]entry
	ttl      time.Duration
	onExpire func(n int)
}

// NewStore returns a Store whose unclaimed payloads expire after ttl once the
// janitor runs. ttl <= 0 keeps payloads until taken.
func NewStore(ttl time.Duration) *Store {
	return &Store{items: make(map[string]entry), ttl: ttl}
}

// SetExpireHook registers a callback with the number of payloads each janitor
// sweep removed.
func (s *Store) SetExpireHook(hook func(n int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = hook
}

// Put stores data under a fresh token.
func (s *Store) Put(data []byte) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[token] = entry{data: data, createdAt: time.Now()}
	return token
}

// Take returns and removes the payload for token.
func (s *Store) Take(token string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[token]
	if !ok {
		return nil, false
	}
	delete(s.items, token)
	return e.data, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// StartJanitor removes expired payloads every interval until ctx ends.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.expire(time.Now())
			}
		}
	}()
}

func (s *Store) expire(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for token, e := range s.items {
		if now.Sub(e.createdAt) >= s.ttl {
			delete(s.items, token)
			removed++
		}
	}
	hook := s.onExpire
	s.mu.Unlock()

	if hook != nil && removed > 0 {
		hook(removed)
	}
	return removed
}
