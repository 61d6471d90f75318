package journal

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// maxInMemoryPerSession bounds the dev store for long sessions.
	maxInMemoryPerSession = 500
	// maxInMemorySessions bounds how many sessions are held at once; the
	// oldest session is evicted first.
	maxInMemorySessions = 1024
)

// InMemoryStore is a simple in-process journal for local/dev use. Records
// live only as long as their connection.
type InMemoryStore struct {
	mu          sync.RWMutex
	records     map[string][]TurnRecord
	order       []string
	maxSessions int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:     make(map[string][]TurnRecord),
		maxSessions: maxInMemorySessions,
	}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, record TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	arr, ok := s.records[record.SessionID]
	if !ok {
		s.order = append(s.order, record.SessionID)
		for len(s.order) > s.maxSessions {
			delete(s.records, s.order[0])
			s.order = s.order[1:]
		}
	}
	arr = append(arr, record)
	if len(arr) > maxInMemoryPerSession {
		arr = append([]TurnRecord(nil), arr[len(arr)-maxInMemoryPerSession:]...)
	}
	s.records[record.SessionID] = arr
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.records[sessionID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]TurnRecord, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Forget(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[sessionID]; !ok {
		return nil
	}
	delete(s.records, sessionID)
	if i := slices.Index(s.order, sessionID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

// Sessions reports how many sessions currently hold records.
func (s *InMemoryStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }

func (s *InMemoryStore) Close() error { return nil }
