package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// EventType names a lifecycle event.
type EventType string

const (
	EventCreated  EventType = "bet.created"
	EventApproved EventType = "bet.approved"
	EventRejected EventType = "bet.rejected"
	EventSettled  EventType = "bet.settled"
)

// Event is emitted after a lifecycle change has been persisted.
type Event struct {
	Type     EventType            `json:"type"`
	Bet      *types.BetRecord     `json:"bet"`
	Bankroll *types.BankrollState `json:"bankroll,omitempty"`
	At       time.Time            `json:"at"`
}

// EventPublisher receives lifecycle events. Publish must not block.
type EventPublisher interface {
	Publish(evt Event)
}

// Config holds manager configuration.
type Config struct {
	Store            Store
	StartingBankroll float64
	UnitValue        float64
	Publisher        EventPublisher
	Logger           *zap.Logger
	Now              func() time.Time
}

// Manager owns the bet lifecycle state machine and the bankroll.
//
// Writes to one record are serialized by a per-ID lock held across the
// load/update round trip. The bankroll is only touched after the store has
// accepted a settlement.
//
// The index and bankroll mirror the store. Another process sharing the
// store makes them stale until Refresh runs; an identifier that misses the
// index triggers one.
type Manager struct {
	store     Store
	index     *Index
	bankroll  *Bankroll
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
	locks     sync.Map

	// book is held shared by writes that touch the store and the in-memory
	// mirror, and exclusively by Refresh.
	book sync.RWMutex
}

// Open loads every record from the store, builds the identifier index and
// rebuilds the bankroll from settled records.
func Open(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: ledger store is required", types.ErrInvalidInput)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	bankroll, err := NewBankroll(cfg.StartingBankroll, cfg.UnitValue)
	if err != nil {
		return nil, fmt.Errorf("create bankroll: %w", err)
	}

	records, err := cfg.Store.List(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}

	bankroll.replay(records)

	m := &Manager{
		store:     cfg.Store,
		index:     NewIndex(recordIDs(records)),
		bankroll:  bankroll,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}

	snap := bankroll.Snapshot()
	m.logger.Info("ledger-opened",
		zap.Int("bets", len(records)),
		zap.Float64("balance", snap.Balance),
		zap.Float64("unit-value", snap.UnitValue))

	return m, nil
}

// Refresh reloads the identifier index and rebuilds the bankroll from the
// store, picking up bets written by other processes.
func (m *Manager) Refresh(ctx context.Context) error {
	m.book.Lock()
	defer m.book.Unlock()

	records, err := m.store.List(ctx, Filter{})
	if err != nil {
		return fmt.Errorf("list bets: %w", err)
	}

	before := m.index.Len()
	m.index.Reset(recordIDs(records))
	snap := m.bankroll.replay(records)

	m.logger.Debug("ledger-refreshed",
		zap.Int("bets", len(records)),
		zap.Int("new-bets", len(records)-before),
		zap.Float64("balance", snap.Balance))
	return nil
}

// resolve maps ref to a full ID, refreshing once on a miss.
func (m *Manager) resolve(ctx context.Context, ref string) (string, error) {
	id, err := m.index.Resolve(ref)
	if !errors.Is(err, types.ErrNotFound) {
		return id, err
	}

	refreshErr := m.Refresh(ctx)
	if refreshErr != nil {
		m.logger.Warn("ledger-refresh-failed", zap.Error(refreshErr))
		return "", err
	}
	return m.index.Resolve(ref)
}

// Bankroll exposes the bankroll for reads.
func (m *Manager) Bankroll() *Bankroll {
	return m.bankroll
}

// Create admits a recommendation into the ledger as a pending bet.
func (m *Manager) Create(ctx context.Context, rec types.BetRecommendation) (*types.BetRecord, error) {
	if !rec.IsRecommended || rec.Stake.Units <= 0 {
		TransitionsRejectedTotal.WithLabelValues("not_recommended").Inc()
		return nil, types.ErrNotRecommended
	}

	now := m.now().UTC()
	bet := &types.BetRecord{
		ID:             uuid.New().String(),
		Recommendation: rec,
		State:          types.StatePending,
		StakeUnits:     rec.Stake.Units,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}

	m.book.RLock()
	err := m.store.Save(ctx, bet)
	if err == nil {
		m.index.Add(bet.ID)
	}
	m.book.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("save bet: %w", err)
	}

	TransitionsTotal.WithLabelValues(string(types.StatePending)).Inc()
	m.logger.Info("bet-created",
		zap.String("bet-id", bet.ID),
		zap.String("game-id", rec.Game.ID),
		zap.String("market", string(rec.Selection.MarketType)),
		zap.Float64("units", bet.StakeUnits))
	m.publish(EventCreated, bet, nil)

	return bet.Clone(), nil
}

// Approve moves a pending bet to approved.
func (m *Manager) Approve(ctx context.Context, ref string) (*types.BetRecord, error) {
	return m.transition(ctx, ref, types.StateApproved, EventApproved)
}

// Reject moves a pending bet to rejected.
func (m *Manager) Reject(ctx context.Context, ref string) (*types.BetRecord, error) {
	return m.transition(ctx, ref, types.StateRejected, EventRejected)
}

func (m *Manager) transition(ctx context.Context, ref string, to types.BetState, evt EventType) (*types.BetRecord, error) {
	id, err := m.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	unlock := m.lock(id)
	defer unlock()

	current, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load bet: %w", err)
	}

	if !types.CanTransition(current.State, to) {
		TransitionsRejectedTotal.WithLabelValues("invalid_transition").Inc()
		return nil, &types.TransitionError{ID: id, From: current.State, To: to, Err: types.ErrInvalidTransition}
	}

	next := current.Clone()
	next.State = to
	next.UpdatedAt = m.now().UTC()
	next.Version++

	err = m.store.Update(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("update bet: %w", err)
	}

	TransitionsTotal.WithLabelValues(string(to)).Inc()
	m.logger.Info("bet-transitioned",
		zap.String("bet-id", id),
		zap.String("from", string(current.State)),
		zap.String("to", string(to)))
	m.publish(evt, next, nil)

	return next.Clone(), nil
}

// Settle grades an approved bet and books realizedUnits against the
// bankroll. The record and the bankroll change together or not at all.
//
// State errors win over argument errors: a settled bet always reports
// ErrAlreadySettled and a bet that is not approved ErrInvalidTransition,
// whatever outcome and units are passed.
func (m *Manager) Settle(ctx context.Context, ref string, outcome types.Outcome, realizedUnits float64) (*types.BetRecord, error) {
	id, err := m.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	unlock := m.lock(id)
	defer unlock()

	current, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load bet: %w", err)
	}

	to := outcome.SettledState()
	if current.State.IsSettled() {
		TransitionsRejectedTotal.WithLabelValues("already_settled").Inc()
		return nil, &types.TransitionError{ID: id, From: current.State, To: to, Err: types.ErrAlreadySettled}
	}
	if !types.CanTransition(current.State, to) {
		TransitionsRejectedTotal.WithLabelValues("invalid_transition").Inc()
		return nil, &types.TransitionError{ID: id, From: current.State, To: to, Err: types.ErrInvalidTransition}
	}

	err = validateSettlement(outcome, realizedUnits)
	if err != nil {
		TransitionsRejectedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	next := current.Clone()
	next.State = to
	next.Outcome = &outcome
	next.RealizedUnits = &realizedUnits
	next.UpdatedAt = m.now().UTC()
	next.Version++

	m.book.RLock()
	err = m.store.Update(ctx, next)
	var state types.BankrollState
	if err == nil {
		state = m.bankroll.apply(outcome, next.StakeUnits, realizedUnits)
	}
	m.book.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("update bet: %w", err)
	}

	TransitionsTotal.WithLabelValues(string(to)).Inc()
	RealizedUnits.Observe(realizedUnits)
	m.logger.Info("bet-settled",
		zap.String("bet-id", id),
		zap.String("outcome", string(outcome)),
		zap.Float64("realized-units", realizedUnits),
		zap.Float64("balance", state.Balance))
	m.publish(EventSettled, next, &state)

	return next.Clone(), nil
}

// Get resolves ref and returns the record.
func (m *Manager) Get(ctx context.Context, ref string) (*types.BetRecord, error) {
	id, err := m.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load bet: %w", err)
	}
	return rec, nil
}

// List returns records matching filter ordered by creation time.
func (m *Manager) List(ctx context.Context, filter Filter) ([]*types.BetRecord, error) {
	if filter.State != "" && !filter.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", types.ErrInvalidInput, filter.State)
	}

	records, err := m.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	return records, nil
}

func (m *Manager) lock(id string) func() {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu, _ := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (m *Manager) publish(t EventType, bet *types.BetRecord, state *types.BankrollState) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(Event{Type: t, Bet: bet.Clone(), Bankroll: state, At: m.now().UTC()})
}

func validateSettlement(outcome types.Outcome, realized float64) error {
	_, err := types.ParseOutcome(string(outcome))
	if err != nil {
		return err
	}
	if math.IsNaN(realized) || math.IsInf(realized, 0) {
		return fmt.Errorf("%w: realized units must be finite", types.ErrInvalidInput)
	}

	switch {
	case outcome == types.OutcomeWin && realized < 0:
		return fmt.Errorf("%w: a win cannot realize %v units", types.ErrInvalidInput, realized)
	case outcome == types.OutcomeLoss && realized > 0:
		return fmt.Errorf("%w: a loss cannot realize %v units", types.ErrInvalidInput, realized)
	case outcome == types.OutcomePush && realized != 0:
		return fmt.Errorf("%w: a push realizes 0 units, got %v", types.ErrInvalidInput, realized)
	}
	return nil
}

func recordIDs(records []*types.BetRecord) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}

// IsLookupError reports whether err came from identifier resolution.
func IsLookupError(err error) bool {
	return errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrAmbiguousIdentifier)
}
