package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// MockStore is an in-memory Store for ledger tests. Setting SaveErr or
// UpdateErr makes the corresponding call fail without side effects.
type MockStore struct {
	mu        sync.Mutex
	records   map[string]*types.BetRecord
	SaveErr   error
	UpdateErr error
	Updates   int
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]*types.BetRecord)}
}

// Save stores a copy of rec.
func (m *MockStore) Save(ctx context.Context, rec *types.BetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("%w: bet %s already exists", types.ErrConflict, rec.ID)
	}
	m.records[rec.ID] = rec.Clone()
	return nil
}

// Load returns a copy of the record with the given ID.
func (m *MockStore) Load(ctx context.Context, id string) (*types.BetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("bet %s: %w", id, types.ErrNotFound)
	}
	return rec.Clone(), nil
}

// List returns copies of matching records ordered by creation time.
func (m *MockStore) List(ctx context.Context, filter Filter) ([]*types.BetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.BetRecord, 0, len(m.records))
	for _, rec := range m.records {
		if filter.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces the stored record when versions line up.
func (m *MockStore) Update(ctx context.Context, rec *types.BetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	current, ok := m.records[rec.ID]
	if !ok {
		return fmt.Errorf("bet %s: %w", rec.ID, types.ErrNotFound)
	}
	if current.Version != rec.Version-1 {
		return fmt.Errorf("bet %s: %w", rec.ID, types.ErrConflict)
	}
	m.records[rec.ID] = rec.Clone()
	m.Updates++
	return nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Put inserts rec directly, bypassing Save. Used to seed restart scenarios.
func (m *MockStore) Put(rec *types.BetRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec.Clone()
}
