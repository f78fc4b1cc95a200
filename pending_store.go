package enroll

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type pendingEntry struct {
	rec       PendingRegistration
	expiresAt time.Time
}

// MemoryPendingStore is a process-local PendingRegistrations backed by a
// mutex-guarded map. Expiry is absolute from Put and enforced lazily at read
// time; reads never extend it.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time
}

var _ PendingRegistrations = (*MemoryPendingStore)(nil)

type MemoryPendingStoreOption func(*MemoryPendingStore)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) MemoryPendingStoreOption {
	return func(s *MemoryPendingStore) {
		s.now = now
	}
}

func NewMemoryPendingStore(opts ...MemoryPendingStoreOption) *MemoryPendingStore {
	s := &MemoryPendingStore{
		entries: make(map[string]pendingEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Put stores rec under email, overwriting any prior entry and resetting its
// expiry. The record is stamped with a fresh revision so a later Consume can
// tell this entry apart from one written by a racing registration.
func (s *MemoryPendingStore) Put(ctx context.Context, email string, rec PendingRegistration, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now()
	rec.Revision = uuid.NewString()
	rec.CreatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[email] = pendingEntry{
		rec:       rec,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Get returns a copy of the live entry for email, or ErrPendingNotFound if
// none exists or it has expired. Expired entries are dropped on the way out.
func (s *MemoryPendingStore) Get(ctx context.Context, email string) (*PendingRegistration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok {
		return nil, ErrPendingNotFound
	}

	if !entry.expiresAt.After(s.now()) {
		delete(s.entries, email)
		return nil, ErrPendingNotFound
	}

	rec := entry.rec
	return &rec, nil
}

// Forget deletes unconditionally.
func (s *MemoryPendingStore) Forget(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, email)
	return nil
}

// Consume deletes the entry for email only if its revision still matches.
// A mismatch means another registration replaced the entry after the caller
// read it; the caller must treat that as not found.
func (s *MemoryPendingStore) Consume(ctx context.Context, email, revision string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok {
		return ErrPendingNotFound
	}

	if !entry.expiresAt.After(s.now()) {
		delete(s.entries, email)
		return ErrPendingNotFound
	}

	if entry.rec.Revision != revision {
		return ErrPendingNotFound
	}

	delete(s.entries, email)
	return nil
}

// Len reports the number of live entries, dropping expired ones. Intended
// for tests and storage hygiene, not part of the PendingRegistrations
// contract.
func (s *MemoryPendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for email, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, email)
		}
	}
	return len(s.entries)
}
