package store

import (
	"context"
	"sync"

	"StockScope/internal/model"
)

// Store is the symbol-keyed cache of the most recently computed series.
// Writes are last-writer-wins per key; durability beyond process lifetime is
// a property of the backend, not of this contract.
type Store interface {
	Get(ctx context.Context, symbol string) (model.Series, bool, error)
	Put(ctx context.Context, symbol string, series model.Series) error
	Close() error
}

// MemoryStore keeps series in process memory. Used in tests and when the
// cache backend is disabled.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string]model.Series
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[string]model.Series)}
}

func (m *MemoryStore) Get(_ context.Context, symbol string) (model.Series, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[symbol]
	if !ok {
		return nil, false, nil
	}
	out := make(model.Series, len(s))
	copy(out, s)
	return out, true, nil
}

func (m *MemoryStore) Put(_ context.Context, symbol string, series model.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(model.Series, len(series))
	copy(cp, series)
	m.series[symbol] = cp
	return nil
}

func (m *MemoryStore) Close() error { return nil }
