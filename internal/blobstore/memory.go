package blobstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests and as a no-persistence
// fallback. Failure injection lets tests exercise the degraded paths the
// state store must absorb.
type Memory struct {
	mu     sync.Mutex
	items  map[string]string
	getErr error
	setErr error
}

func NewMemory() *Memory {
	return &Memory{items: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.items[key] = value
	return nil
}

// FailGets makes every subsequent Get return err. Pass nil to heal.
func (m *Memory) FailGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// FailSets makes every subsequent Set return err. Pass nil to heal.
func (m *Memory) FailSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// Len reports the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
