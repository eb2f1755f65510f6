package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/pkg/types"
)

// MemoryStore is a process-local ledger.Store. Records are lost on exit,
// which suits dry runs and the server's ephemeral mode.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*types.BetRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*types.BetRecord)}
}

func (m *MemoryStore) Save(ctx context.Context, rec *types.BetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("insert bet: %w: %s exists", types.ErrConflict, rec.ID)
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*types.BetRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("bet %s: %w", id, types.ErrNotFound)
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) List(ctx context.Context, filter ledger.Filter) ([]*types.BetRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.BetRecord, 0, len(m.records))
	for _, rec := range m.records {
		if filter.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, rec *types.BetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[rec.ID]
	if !ok {
		return fmt.Errorf("bet %s: %w", rec.ID, types.ErrNotFound)
	}
	if current.Version != rec.Version-1 {
		return fmt.Errorf("bet %s version %d: %w", rec.ID, rec.Version-1, types.ErrConflict)
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
