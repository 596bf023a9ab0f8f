package store

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory. Nothing survives a restart, so it
// suits tests and one-shot scripted sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	scope string
	data  map[string][]byte
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(scope string) *MemoryStore {
	return &MemoryStore{
		scope: scope,
		data:  make(map[string][]byte),
	}
}

// Get retrieves a value
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[Key(m.scope, key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// SetMulti stores all values under one lock
func (m *MemoryStore) SetMulti(ctx context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		cp := make([]byte, len(v))
		copy(cp, v)
		m.data[Key(m.scope, k)] = cp
	}
	return nil
}

// Delete removes keys; missing keys are ignored
func (m *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, Key(m.scope, k))
	}
	return nil
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
