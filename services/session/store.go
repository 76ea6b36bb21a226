// Package session keeps each user's in-progress booking selection.
// Entries expire: the original behavior of holding selections forever
// grows without bound, so both backends enforce a TTL.
package session

import (
	"context"
	"sync"
	"time"

	"clinicbot/models"
)

// Clock lets tests control time.
type Clock func() time.Time

// Store holds pending selections keyed by user id. Get returns nil
// (and no error) when the user has no live session.
type Store interface {
	Get(ctx context.Context, userID int64) (*models.Session, error)
	Put(ctx context.Context, sess *models.Session) error
	Clear(ctx context.Context, userID int64) error
}

type memoryEntry struct {
	sess      models.Session
	expiresAt time.Time
}

// MemoryStore is the default in-process backend: a mutex-guarded map
// with lazy expiry plus a janitor that sweeps abandoned sessions.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	clock   Clock
	done    chan struct{}
}

// NewMemoryStore builds a memory store. A nil clock defaults to
// time.Now.
func NewMemoryStore(ttl time.Duration, clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		clock:   clock,
		done:    make(chan struct{}),
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return nil, nil
	}
	if !s.clock().Before(entry.expiresAt) {
		delete(s.entries, userID)
		return nil, nil
	}
	sess := entry.sess
	return &sess, nil
}

func (s *MemoryStore) Put(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	stored := *sess
	stored.UpdatedAt = now
	s.entries[sess.UserID] = memoryEntry{sess: stored, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// StartJanitor sweeps expired entries until Stop is called. Expiry is
// already enforced on Get; the janitor only bounds memory for users who
// never come back.
func (s *MemoryStore) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the janitor goroutine.
func (s *MemoryStore) Stop() {
	close(s.done)
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Len reports the number of live entries (expired ones included until
// swept).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
