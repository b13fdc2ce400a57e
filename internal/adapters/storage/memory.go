package storage

import (
	"bytes"
	"context"
	"sync"
)

// MemoryKV is a process-local store. It backs the session store, whose
// contents are dropped by Reset at shutdown.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ KV = (*MemoryKV)(nil)

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return bytes.Clone(v), nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = bytes.Clone(value)

	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

// Reset drops every key.
func (m *MemoryKV) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.data)
}

// Close implements KV by resetting the store.
func (m *MemoryKV) Close() error {
	m.Reset()
	return nil
}

// Name implements ports.HealthChecker.
func (m *MemoryKV) Name() string {
	return "session-store"
}

// Check implements ports.HealthChecker. An in-memory store is always ready.
func (m *MemoryKV) Check(context.Context) error {
	return nil
}
