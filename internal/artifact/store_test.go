package artifact

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreTakeIsOneShot(t *testing.T) {
	s := NewStore(0)
	token := s.Put([]byte("wav"))
	if token == "" {
		t.Fatalf("Put() returned empty token")
	}

	data, ok := s.Take(token)
	if !ok || string(data) != "wav" {
		t.Fatalf("first Take() = %q, %v; want wav, true", data, ok)
	}
	if _, ok := s.Take(token); ok {
		t.Fatalf("second Take() ok = true, want false")
	}
	if _, ok := s.Take("unknown"); ok {
		t.Fatalf("Take(unknown) ok = true, want false")
	}
}

func TestStoreTokensAreUnique(t *testing.T) {
	s := NewStore(0)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		token := s.Put(nil)
		if seen[token] {
			t.Fatalf("token %q reused", token)
		}
		seen[token] = true
	}
	if s.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", s.Len())
	}
}

func TestStoreConcurrentTakeHasSingleWinner(t *testing.T) {
	s := NewStore(0)
	for round := 0; round < 50; round++ {
		token := s.Put([]byte{byte(round)})
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok := s.Take(token); ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		if wins.Load() != 1 {
			t.Fatalf("round %d: %d successful takes, want 1", round, wins.Load())
		}
	}
}

func TestStoreExpire(t *testing.T) {
	s := NewStore(time.Minute)
	var expired int
	s.SetExpireHook(func(n int) { expired += n })
	old := s.Put([]byte("old"))
	fresh := s.Put([]byte("fresh"))

	s.mu.Lock()
	e := s.items[old]
	e.createdAt = time.Now().Add(-2 * time.Minute)
	s.items[old] = e
	s.mu.Unlock()

	if n := s.expire(time.Now()); n != 1 {
		t.Fatalf("expire() = %d, want 1", n)
	}
	if expired != 1 {
		t.Fatalf("hook saw %d, want 1", expired)
	}
	if _, ok := s.Take(old); ok {
		t.Fatalf("expired payload still served")
	}
	if _, ok := s.Take(fresh); !ok {
		t.Fatalf("fresh payload expired early")
	}
}

func TestStoreJanitorExpiresUnclaimed(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	token := s.Put([]byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx, 10*time.Millisecond)

	time.Sleep(90 * time.Millisecond)
	if _, ok := s.Take(token); ok {
		t.Fatalf("janitor did not expire payload")
	}
}
