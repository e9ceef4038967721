package progress

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory for offline mode.
// Records are provisioned with defaults on first access, so it never
// returns ErrUserNotFound.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*UserProgress
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*UserProgress)}
}

func (s *MemoryStore) Find(_ context.Context, userID string) (*UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(userID).Clone(), nil
}

func (s *MemoryStore) Mutate(_ context.Context, userID string, fn MutateFunc) (*UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.getOrCreate(userID).Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.records[userID] = working
	return working.Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(userID)
	return nil
}

// Reset drops every record. Test hook; nothing in the server calls it.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*UserProgress)
}

// caller holds s.mu
func (s *MemoryStore) getOrCreate(userID string) *UserProgress {
	rec, ok := s.records[userID]
	if !ok {
		rec = NewUserProgress(userID)
		s.records[userID] = rec
	}
	return rec
}
