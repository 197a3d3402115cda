package dedup

import (
	"context"
	"sync"
)

// Memory is a process-lifetime token set. It grows without bound and is lost
// on restart; both limitations are part of the contract for this backend.
type Memory struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemory creates an empty in-memory dedup store.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

// Add inserts id if absent. The check and insert happen under one lock.
func (m *Memory) Add(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[id]; ok {
		return false, nil
	}
	m.ids[id] = struct{}{}
	return true, nil
}

// Remove deletes a recorded token.
func (m *Memory) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, id)
	return nil
}

// Len returns the number of recorded tokens.
func (m *Memory) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids), nil
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error { return nil }
