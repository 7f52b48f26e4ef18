package session

import (
	"context"
	"sync"
	"time"

	"github.com/kewo/kewo-rechner/internal/calculator"
)

type memoryEntry struct {
	inputs    calculator.Inputs
	updatedAt time.Time
}

// MemoryStore is a thread-safe in-process store, mainly for development
// and tests. Expired entries are removed by PurgeExpired.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// NewMemoryStore creates a MemoryStore with the given idle TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (calculator.Inputs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[id]
	if !ok || expired(e.updatedAt, m.now(), m.ttl) {
		return calculator.Inputs{}, ErrNotFound
	}
	return e.inputs, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) (calculator.Inputs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var in calculator.Inputs
	if e, ok := m.data[id]; ok && !expired(e.updatedAt, now, m.ttl) {
		in = e.inputs
	}

	if err := fn(&in); err != nil {
		return calculator.Inputs{}, err
	}

	m.data[id] = memoryEntry{inputs: in, updatedAt: now}
	return in, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.data {
		if expired(e.updatedAt, now, m.ttl) {
			delete(m.data, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of held sessions, including expired ones not yet purged.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
