package storage

import (
	"context"
	"sync"
)

// MemoryBackend implements Backend using in-memory storage. It is the
// null-object collaborator for memory-only operation and tests.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryBackend creates a new in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string]string),
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
