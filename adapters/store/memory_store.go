package store

import (
	"context"
	"sync"
	"time"

	"github.com/propchain/gatekeeper/ports"
)

// MemoryTicketStore implements the TicketStore interface with an in-memory
// map. Entries expire lazily on access. Intended for tests and local
// development.
type MemoryTicketStore struct {
	mu   sync.Mutex
	data map[string]memoryEntry
}

type memoryEntry struct {
	payload   string
	expiresAt time.Time
}

// NewMemoryTicketStore creates a new in-memory ticket store.
func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{data: make(map[string]memoryEntry)}
}

func (e memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func (s *MemoryTicketStore) Put(ctx context.Context, namespace, k, payload string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key(namespace, k)] = memoryEntry{payload: payload, expiresAt: expiry(ttl)}
	return nil
}

func (s *MemoryTicketStore) PutUnique(ctx context.Context, namespace, k, payload string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := key(namespace, k)
	if entry, ok := s.data[id]; ok && !entry.expired() {
		return ports.ErrTicketExists
	}
	s.data[id] = memoryEntry{payload: payload, expiresAt: expiry(ttl)}
	return nil
}

func (s *MemoryTicketStore) Consume(ctx context.Context, namespace, k string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := key(namespace, k)
	entry, ok := s.data[id]
	if !ok || entry.expired() {
		delete(s.data, id)
		return "", ports.ErrTicketNotFound
	}
	delete(s.data, id)
	return entry.payload, nil
}

func (s *MemoryTicketStore) PeekCompare(ctx context.Context, namespace, k, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key(namespace, k)]
	if !ok || entry.expired() {
		return false, nil
	}
	return entry.payload == expected, nil
}

func (s *MemoryTicketStore) Delete(ctx context.Context, namespace, k string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key(namespace, k))
	return nil
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

var _ ports.TicketStore = (*MemoryTicketStore)(nil)
