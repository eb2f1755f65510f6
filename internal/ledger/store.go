package ledger

import (
	"context"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// Filter narrows List results. The zero value lists every record.
type Filter struct {
	State types.BetState
}

// Matches reports whether rec passes the filter.
func (f Filter) Matches(rec *types.BetRecord) bool {
	return f.State == "" || rec.State == f.State
}

// Store persists bet records.
//
// Update must only succeed when the stored version equals rec.Version-1 and
// must fail with types.ErrConflict otherwise. Load fails with
// types.ErrNotFound for unknown IDs. List returns records ordered by
// creation time.
type Store interface {
	Save(ctx context.Context, rec *types.BetRecord) error
	Load(ctx context.Context, id string) (*types.BetRecord, error)
	List(ctx context.Context, filter Filter) ([]*types.BetRecord, error)
	Update(ctx context.Context, rec *types.BetRecord) error
	Close() error
}
