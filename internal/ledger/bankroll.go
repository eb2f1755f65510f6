package ledger

import (
	"fmt"
	"sync"

	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/shopspring/decimal"
)

// Bankroll is the process-wide bankroll. It is read by every component but
// written only by Manager.Settle, through apply.
type Bankroll struct {
	mu            sync.RWMutex
	starting      decimal.Decimal
	unitValue     decimal.Decimal
	realizedUnits decimal.Decimal
	settledStake  decimal.Decimal
	wins          int
	losses        int
	pushes        int
}

// NewBankroll creates a bankroll with the given starting balance and
// currency value of one unit.
func NewBankroll(starting, unitValue float64) (*Bankroll, error) {
	if unitValue <= 0 {
		return nil, fmt.Errorf("%w: unit value must be positive, got %v", types.ErrInvalidInput, unitValue)
	}
	if starting < 0 {
		return nil, fmt.Errorf("%w: starting bankroll cannot be negative, got %v", types.ErrInvalidInput, starting)
	}

	b := &Bankroll{
		starting:  decimal.NewFromFloat(starting),
		unitValue: decimal.NewFromFloat(unitValue),
	}
	BankrollBalance.Set(starting)
	return b, nil
}

// apply books one settled bet. Callers must have persisted the settlement.
func (b *Bankroll) apply(outcome types.Outcome, stakeUnits, realizedUnits float64) types.BankrollState {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bookLocked(outcome, stakeUnits, realizedUnits)

	state := b.snapshotLocked()
	BankrollBalance.Set(state.Balance)
	return state
}

// replay replaces the running totals with those of the settled records.
// Readers see either the old totals or the new ones, never a mix.
func (b *Bankroll) replay(records []*types.BetRecord) types.BankrollState {
	fresh := &Bankroll{starting: b.starting, unitValue: b.unitValue}
	for _, rec := range records {
		if rec.State.IsSettled() && rec.Outcome != nil && rec.RealizedUnits != nil {
			fresh.bookLocked(*rec.Outcome, rec.StakeUnits, *rec.RealizedUnits)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.realizedUnits = fresh.realizedUnits
	b.settledStake = fresh.settledStake
	b.wins, b.losses, b.pushes = fresh.wins, fresh.losses, fresh.pushes

	state := b.snapshotLocked()
	BankrollBalance.Set(state.Balance)
	return state
}

func (b *Bankroll) bookLocked(outcome types.Outcome, stakeUnits, realizedUnits float64) {
	b.realizedUnits = b.realizedUnits.Add(decimal.NewFromFloat(realizedUnits))
	b.settledStake = b.settledStake.Add(decimal.NewFromFloat(stakeUnits))

	switch outcome {
	case types.OutcomeWin:
		b.wins++
	case types.OutcomeLoss:
		b.losses++
	case types.OutcomePush:
		b.pushes++
	}
}

// UnitValue returns the currency value of one unit.
func (b *Bankroll) UnitValue() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.unitValue.InexactFloat64()
}

// Balance returns the current balance in currency.
func (b *Bankroll) Balance() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balanceLocked()
}

// Snapshot returns the current bankroll state.
func (b *Bankroll) Snapshot() types.BankrollState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Bankroll) balanceLocked() decimal.Decimal {
	return b.starting.Add(b.realizedUnits.Mul(b.unitValue))
}

func (b *Bankroll) snapshotLocked() types.BankrollState {
	state := types.BankrollState{
		StartingBankroll:  b.starting.InexactFloat64(),
		UnitValue:         b.unitValue.InexactFloat64(),
		Balance:           b.balanceLocked().InexactFloat64(),
		RealizedUnits:     b.realizedUnits.InexactFloat64(),
		RealizedPL:        b.realizedUnits.Mul(b.unitValue).InexactFloat64(),
		Wins:              b.wins,
		Losses:            b.losses,
		Pushes:            b.pushes,
		SettledStakeUnits: b.settledStake.InexactFloat64(),
	}
	if b.settledStake.IsPositive() {
		state.ROI = b.realizedUnits.Div(b.settledStake).InexactFloat64()
	}
	return state
}
