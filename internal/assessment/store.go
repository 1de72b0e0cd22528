package assessment

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown or expired assessment IDs.
var ErrNotFound = errors.New("assessment not found")

// Store holds generated assessments for the lifetime of a session.
type Store interface {
	Save(ctx context.Context, res *Result) error
	Get(ctx context.Context, id string) (*Result, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	result    *Result
	expiresAt time.Time
}

// MemoryStore is an in-memory Store with per-entry expiry.
type MemoryStore struct {
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryStore creates an in-memory store. A ttl of zero keeps entries
// until they are deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, res *Result) error {
	if res == nil || res.ID == "" {
		return errors.New("result id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	entry := memoryEntry{result: res}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[res.ID] = entry
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok || s.expired(entry) {
		return nil, ErrNotFound
	}
	return entry.result, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if !s.expired(e) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// evictExpired must be called with the write lock held.
func (s *MemoryStore) evictExpired() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}
