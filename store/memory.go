package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps encoded blobs in a map. Values round-trip through JSON so a
// Memory store behaves like the persistent ones.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailSave, when set, is returned by every Save.
	FailSave error
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string, v any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return decode(key, data, v)
}

func (m *Memory) Save(_ context.Context, key string, v any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := encode(key, v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return fmt.Errorf("save %s: %w", key, m.FailSave)
	}
	m.blobs[key] = data
	return nil
}

// Put stores raw bytes under key.
func (m *Memory) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
}

// Len reports how many blobs are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func (m *Memory) Close() error { return nil }
