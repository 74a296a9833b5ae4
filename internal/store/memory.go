package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is a process-local Store. All collections share one mutex.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]json.RawMessage
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]json.RawMessage)}
}

// Read returns a copy of the collection.
func (m *Memory) Read(_ context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRecords(m.collections[collection]), nil
}

// Write replaces the collection.
func (m *Memory) Write(_ context.Context, collection string, records []json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = cloneRecords(records)
	return nil
}

// Update runs fn while holding the store lock.
func (m *Memory) Update(_ context.Context, collection string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(cloneRecords(m.collections[collection]))
	if err != nil {
		return err
	}
	m.collections[collection] = cloneRecords(next)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func cloneRecords(records []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}
