package savecache

import (
	"context"
	"sync"
	"time"
)

const sweepThreshold = 1024

type entry struct {
	fingerprint string
	expiresAt   time.Time
}

// MemoryStore keeps claims in process memory. It is the default for single-instance
// deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemoryStore constructs an empty memory-backed store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

// Claim implements the Store interface.
func (s *MemoryStore) Claim(_ context.Context, key, fingerprint string, now time.Time, window time.Duration) (Claim, error) {
	if !validKey(key) {
		return Claim{}, ErrEmptyKey
	}
	now = now.UTC()
	window = normalizeWindow(window)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= sweepThreshold {
		s.sweepLocked(now)
	}

	current, ok := s.entries[key]
	if ok && now.Before(current.expiresAt) && current.fingerprint == fingerprint {
		return Claim{State: ClaimDuplicate, Key: key, Fingerprint: fingerprint, ExpiresAt: current.expiresAt}, nil
	}

	next := entry{fingerprint: fingerprint, expiresAt: now.Add(window)}
	s.entries[key] = next
	return Claim{State: ClaimNew, Key: key, Fingerprint: fingerprint, ExpiresAt: next.expiresAt}, nil
}

// Release implements the Store interface.
func (s *MemoryStore) Release(_ context.Context, key, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.entries[key]; ok && current.fingerprint == fingerprint {
		delete(s.entries, key)
	}
	return nil
}

// CleanupExpired removes entries that expired before now and returns how many were dropped.
func (s *MemoryStore) CleanupExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now.UTC())
}

// Len returns the number of held entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for key, e := range s.entries {
		if now.Before(e.expiresAt) {
			continue
		}
		delete(s.entries, key)
		removed++
	}
	return removed
}
