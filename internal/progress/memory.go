package progress

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]Progress
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:  time.Now,
		data: map[string]Progress{},
	}
}

func (s *MemoryStore) Load(_ context.Context, visitorID string) (Progress, error) {
	if visitorID == "" {
		return Progress{}, ErrNoVisitor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[visitorID]
	if !ok {
		return New(visitorID), nil
	}
	return Merge(p, Progress{}), nil
}

func (s *MemoryStore) Save(_ context.Context, p Progress) (Progress, error) {
	if p.VisitorID == "" {
		return Progress{}, ErrNoVisitor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := Merge(s.data[p.VisitorID], p)
	merged.VisitorID = p.VisitorID
	merged.UpdatedAt = s.now()
	s.data[p.VisitorID] = merged
	return Merge(merged, Progress{}), nil
}
