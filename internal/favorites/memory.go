package favorites

import (
	"context"
	"sync"
)

// MemoryKV is a concurrency-safe in-memory KV. Lists do not survive a
// restart.
type MemoryKV struct {
	mu sync.RWMutex

	// key: "<device>:<list>", value: items in insertion order
	data map[string][]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data: make(map[string][]string),
	}
}

// Get returns a copy of the list stored at key.
func (m *MemoryKV) Get(_ context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items, ok := m.data[key]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, len(items))
	copy(out, items)
	return out, nil
}

// Set replaces the list stored at key.
func (m *MemoryKV) Set(_ context.Context, key string, items []string) error {
	stored := make([]string, len(items))
	copy(stored, items)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = stored
	return nil
}
