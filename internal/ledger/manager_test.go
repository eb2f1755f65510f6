package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) eventTypes() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestManager(t *testing.T, store Store, pub EventPublisher) *Manager {
	t.Helper()
	m, err := Open(context.Background(), Config{
		Store:            store,
		StartingBankroll: 1000,
		UnitValue:        10,
		Publisher:        pub,
		Logger:           zap.NewNop(),
	})
	require.NoError(t, err)
	return m
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	m := newTestManager(t, store, nil)

	bet, err := m.Create(ctx, CreateTestRecommendation("g1", 1.2))
	require.NoError(t, err)

	_, err = uuid.Parse(bet.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatePending, bet.State)
	assert.Equal(t, 1.2, bet.StakeUnits)
	assert.Nil(t, bet.Outcome)
	assert.Nil(t, bet.RealizedUnits)

	got, err := m.Get(ctx, bet.ShortID())
	require.NoError(t, err)
	assert.Equal(t, bet.ID, got.ID)
}

func TestManager_CreateRejectsSuppressed(t *testing.T) {
	m := newTestManager(t, NewMockStore(), nil)

	_, err := m.Create(context.Background(), CreateTestRecommendation("g1", 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotRecommended)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestManager_ApproveAndSettle(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m := newTestManager(t, NewMockStore(), pub)

	bet, err := m.Create(ctx, CreateTestRecommendation("g1", 1.2))
	require.NoError(t, err)

	approved, err := m.Approve(ctx, bet.ID[:6])
	require.NoError(t, err)
	assert.Equal(t, types.StateApproved, approved.State)

	settled, err := m.Settle(ctx, bet.ID, types.OutcomeWin, 1.15)
	require.NoError(t, err)
	assert.Equal(t, types.StateSettledWin, settled.State)
	require.NotNil(t, settled.Outcome)
	assert.Equal(t, types.OutcomeWin, *settled.Outcome)
	require.NotNil(t, settled.RealizedUnits)
	assert.Equal(t, 1.15, *settled.RealizedUnits)

	snap := m.Bankroll().Snapshot()
	assert.InDelta(t, 1011.5, snap.Balance, 1e-9)
	assert.Equal(t, 1, snap.Wins)

	assert.Equal(t, []EventType{EventCreated, EventApproved, EventSettled}, pub.eventTypes())
}

func TestManager_SettleTwice(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMockStore(), nil)

	bet, err := m.Create(ctx, CreateTestRecommendation("g1", 1.0))
	require.NoError(t, err)
	_, err = m.Approve(ctx, bet.ID)
	require.NoError(t, err)
	_, err = m.Settle(ctx, bet.ID, types.OutcomeLoss, -1.0)
	require.NoError(t, err)

	before := m.Bankroll().Snapshot()

	_, err = m.Settle(ctx, bet.ID, types.OutcomeWin, 0.9)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAlreadySettled)

	var te *types.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, types.StateSettledLoss, te.From)

	retries := []struct {
		name     string
		outcome  types.Outcome
		realized float64
	}{
		{name: "loss_positive_units", outcome: types.OutcomeLoss, realized: 1},
		{name: "push_nonzero_units", outcome: types.OutcomePush, realized: 0.5},
		{name: "win_negative_units", outcome: types.OutcomeWin, realized: -1},
		{name: "unknown_outcome", outcome: types.Outcome("void"), realized: 0},
		{name: "nan_units", outcome: types.OutcomeWin, realized: math.NaN()},
	}

	for _, tt := range retries {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Settle(ctx, bet.ID, tt.outcome, tt.realized)
			assert.ErrorIs(t, err, types.ErrAlreadySettled)
			assert.NotErrorIs(t, err, types.ErrInvalidInput)
		})
	}

	assert.Equal(t, before, m.Bankroll().Snapshot())
}

func TestManager_SettleStateBeforeArguments(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMockStore(), nil)

	pending, err := m.Create(ctx, CreateTestRecommendation("g1", 1.0))
	require.NoError(t, err)
	rejected, err := m.Create(ctx, CreateTestRecommendation("g2", 1.0))
	require.NoError(t, err)
	_, err = m.Reject(ctx, rejected.ID)
	require.NoError(t, err)

	for _, id := range []string{pending.ID, rejected.ID} {
		_, err := m.Settle(ctx, id, types.OutcomeLoss, 2)
		assert.ErrorIs(t, err, types.ErrInvalidTransition)
		assert.NotErrorIs(t, err, types.ErrInvalidInput)
	}

	_, err = m.Settle(ctx, "zzzz", types.OutcomeWin, -3)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestManager_InvalidTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(m *Manager, id string)
		act   func(m *Manager, id string) error
		want  error
	}{
		{
			name:  "settle_pending",
			setup: func(m *Manager, id string) {},
			act: func(m *Manager, id string) error {
				_, err := m.Settle(ctx, id, types.OutcomeWin, 1)
				return err
			},
			want: types.ErrInvalidTransition,
		},
		{
			name: "settle_rejected",
			setup: func(m *Manager, id string) {
				_, _ = m.Reject(ctx, id)
			},
			act: func(m *Manager, id string) error {
				_, err := m.Settle(ctx, id, types.OutcomePush, 0)
				return err
			},
			want: types.ErrInvalidTransition,
		},
		{
			name: "reject_approved",
			setup: func(m *Manager, id string) {
				_, _ = m.Approve(ctx, id)
			},
			act: func(m *Manager, id string) error {
				_, err := m.Reject(ctx, id)
				return err
			},
			want: types.ErrInvalidTransition,
		},
		{
			name: "approve_twice",
			setup: func(m *Manager, id string) {
				_, _ = m.Approve(ctx, id)
			},
			act: func(m *Manager, id string) error {
				_, err := m.Approve(ctx, id)
				return err
			},
			want: types.ErrInvalidTransition,
		},
		{
			name: "approve_settled",
			setup: func(m *Manager, id string) {
				_, _ = m.Approve(ctx, id)
				_, _ = m.Settle(ctx, id, types.OutcomePush, 0)
			},
			act: func(m *Manager, id string) error {
				_, err := m.Approve(ctx, id)
				return err
			},
			want: types.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, NewMockStore(), nil)
			bet, err := m.Create(ctx, CreateTestRecommendation("g1", 1.0))
			require.NoError(t, err)

			tt.setup(m, bet.ID)
			before, err := m.Get(ctx, bet.ID)
			require.NoError(t, err)

			err = tt.act(m, bet.ID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			after, err := m.Get(ctx, bet.ID)
			require.NoError(t, err)
			assert.Equal(t, before, after, "failed command must not change the record")
		})
	}
}

func TestManager_SettleValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMockStore(), nil)

	bet, err := m.Create(ctx, CreateTestRecommendation("g1", 1.0))
	require.NoError(t, err)
	_, err = m.Approve(ctx, bet.ID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		outcome  types.Outcome
		realized float64
	}{
		{name: "unknown_outcome", outcome: types.Outcome("void"), realized: 0},
		{name: "negative_win", outcome: types.OutcomeWin, realized: -1},
		{name: "positive_loss", outcome: types.OutcomeLoss, realized: 0.5},
		{name: "nonzero_push", outcome: types.OutcomePush, realized: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Settle(ctx, bet.ID, tt.outcome, tt.realized)
			assert.ErrorIs(t, err, types.ErrInvalidInput)
		})
	}

	got, err := m.Get(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateApproved, got.State)
}

func TestManager_SettleStoreFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	m := newTestManager(t, store, nil)

	bet, err := m.Create(ctx, CreateTestRecommendation("g1", 1.0))
	require.NoError(t, err)
	_, err = m.Approve(ctx, bet.ID)
	require.NoError(t, err)

	before := m.Bankroll().Snapshot()
	store.UpdateErr = errors.New("disk full")

	_, err = m.Settle(ctx, bet.ID, types.OutcomeWin, 0.91)
	require.Error(t, err)

	store.UpdateErr = nil
	got, err := m.Get(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateApproved, got.State)
	assert.Nil(t, got.Outcome)
	assert.Equal(t, before, m.Bankroll().Snapshot())
}

func TestManager_ConcurrentSettleAppliesOnce(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMockStore(), nil)

	bet, err := m.Create(ctx, CreateTestRecommendation("g1", 1.0))
	require.NoError(t, err)
	_, err = m.Approve(ctx, bet.ID)
	require.NoError(t, err)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Settle(ctx, bet.ID, types.OutcomeWin, 0.91)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, types.ErrAlreadySettled) {
				already++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, already)
	assert.InDelta(t, 1009.1, m.Bankroll().Snapshot().Balance, 1e-9)
}

func TestManager_AmbiguousAndMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"abc00000-1", "abc11111-2"} {
		store.Put(&types.BetRecord{
			ID:             id,
			Recommendation: CreateTestRecommendation("g-"+id, 1.0),
			State:          types.StatePending,
			StakeUnits:     1.0,
			CreatedAt:      now,
			UpdatedAt:      now,
			Version:        1,
		})
	}
	m := newTestManager(t, store, nil)

	_, err := m.Approve(ctx, "abc")
	assert.ErrorIs(t, err, types.ErrAmbiguousIdentifier)
	assert.True(t, IsLookupError(err))

	_, err = m.Approve(ctx, "fff")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.False(t, errors.Is(err, types.ErrAmbiguousIdentifier))

	approved, err := m.Approve(ctx, "abc1")
	require.NoError(t, err)
	assert.Equal(t, "abc11111-2", approved.ID)
}

func TestOpen_RebuildsBankrollFromSettledRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	win, loss := types.OutcomeWin, types.OutcomeLoss
	plus, minus := 1.15, -0.8
	store.Put(&types.BetRecord{
		ID: "a", State: types.StateSettledWin, StakeUnits: 1.2,
		Outcome: &win, RealizedUnits: &plus, CreatedAt: now, Version: 3,
	})
	store.Put(&types.BetRecord{
		ID: "b", State: types.StateSettledLoss, StakeUnits: 0.8,
		Outcome: &loss, RealizedUnits: &minus, CreatedAt: now.Add(time.Minute), Version: 3,
	})
	store.Put(&types.BetRecord{
		ID: "c", State: types.StatePending, StakeUnits: 2, CreatedAt: now.Add(2 * time.Minute), Version: 1,
	})

	m := newTestManager(t, store, nil)
	snap := m.Bankroll().Snapshot()
	assert.InDelta(t, 1003.5, snap.Balance, 1e-9)
	assert.Equal(t, 1, snap.Wins)
	assert.Equal(t, 1, snap.Losses)

	pending, err := m.List(ctx, Filter{State: types.StatePending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c", pending[0].ID)

	_, err = m.List(ctx, Filter{State: types.BetState("open")})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestManager_SharedStoreResolvesOnMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	server := newTestManager(t, store, nil)
	cli := newTestManager(t, store, nil)

	bet, err := cli.Create(ctx, CreateTestRecommendation("g1", 2.0))
	require.NoError(t, err)
	_, err = cli.Approve(ctx, bet.ID)
	require.NoError(t, err)
	_, err = cli.Settle(ctx, bet.ID, types.OutcomeLoss, -2.0)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, server.Bankroll().Snapshot().Balance)

	got, err := server.Get(ctx, bet.ShortID())
	require.NoError(t, err)
	assert.Equal(t, types.StateSettledLoss, got.State)

	snap := server.Bankroll().Snapshot()
	assert.InDelta(t, 980.0, snap.Balance, 1e-9)
	assert.Equal(t, 1, snap.Losses)

	_, err = server.Settle(ctx, bet.ID, types.OutcomeWin, 1)
	assert.ErrorIs(t, err, types.ErrAlreadySettled)

	_, err = server.Get(ctx, "zzzz")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestManager_RefreshPicksUpSettlements(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	server := newTestManager(t, store, nil)

	bet, err := server.Create(ctx, CreateTestRecommendation("g1", 1.0))
	require.NoError(t, err)

	cli := newTestManager(t, store, nil)
	_, err = cli.Approve(ctx, bet.ID)
	require.NoError(t, err)
	_, err = cli.Settle(ctx, bet.ID, types.OutcomeLoss, -1.0)
	require.NoError(t, err)

	// the ID is already indexed, so only an explicit refresh sees the settlement
	assert.Equal(t, 0, server.Bankroll().Snapshot().Losses)
	require.NoError(t, server.Refresh(ctx))
	assert.Equal(t, 1, server.Bankroll().Snapshot().Losses)
	assert.InDelta(t, 990.0, server.Bankroll().Snapshot().Balance, 1e-9)

	require.NoError(t, server.Refresh(ctx))
	assert.InDelta(t, 990.0, server.Bankroll().Snapshot().Balance, 1e-9)
}

func TestManager_RefreshDuringSettlementsCountsOnce(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMockStore(), nil)

	const n = 20
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		bet, err := m.Create(ctx, CreateTestRecommendation(uuid.NewString(), 1.0))
		require.NoError(t, err)
		_, err = m.Approve(ctx, bet.ID)
		require.NoError(t, err)
		ids = append(ids, bet.ID)
	}

	stop := make(chan struct{})
	var refresher sync.WaitGroup
	refresher.Add(1)
	go func() {
		defer refresher.Done()
		for {
			select {
			case <-stop:
				return
			default:
				assert.NoError(t, m.Refresh(ctx))
			}
		}
	}()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := m.Settle(ctx, id, types.OutcomeLoss, -1.0)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()
	close(stop)
	refresher.Wait()

	snap := m.Bankroll().Snapshot()
	assert.Equal(t, n, snap.Losses)
	assert.InDelta(t, 1000.0-n*10, snap.Balance, 1e-9)
}
