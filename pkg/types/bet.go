package types

import (
	"fmt"
	"time"
)

// BetState is a lifecycle state of a BetRecord.
type BetState string

const (
	StatePending     BetState = "pending"
	StateApproved    BetState = "approved"
	StateRejected    BetState = "rejected"
	StateSettledWin  BetState = "settled_win"
	StateSettledLoss BetState = "settled_loss"
	StateSettledPush BetState = "settled_push"
)

// IsSettled reports whether s is one of the settled states.
func (s BetState) IsSettled() bool {
	return s == StateSettledWin || s == StateSettledLoss || s == StateSettledPush
}

// IsTerminal reports whether no transition leaves s.
func (s BetState) IsTerminal() bool {
	return s == StateRejected || s.IsSettled()
}

// Valid reports whether s is a known state.
func (s BetState) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected,
		StateSettledWin, StateSettledLoss, StateSettledPush:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to BetState) bool {
	switch from {
	case StatePending:
		return to == StateApproved || to == StateRejected
	case StateApproved:
		return to.IsSettled()
	}
	return false
}

// Outcome is the graded result of a bet.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// ParseOutcome validates a user-supplied outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeWin, OutcomeLoss, OutcomePush:
		return o, nil
	}
	return "", fmt.Errorf("%w: outcome must be win, loss or push, got %q", ErrInvalidInput, s)
}

// SettledState maps an outcome to its settled state.
func (o Outcome) SettledState() BetState {
	switch o {
	case OutcomeWin:
		return StateSettledWin
	case OutcomeLoss:
		return StateSettledLoss
	default:
		return StateSettledPush
	}
}

// BetRecord is the persisted lifecycle entity. Records are never deleted.
type BetRecord struct {
	ID             string            `json:"id"`
	Recommendation BetRecommendation `json:"recommendation"`
	State          BetState          `json:"state"`
	StakeUnits     float64           `json:"stake_units"`
	Outcome        *Outcome          `json:"outcome,omitempty"`
	RealizedUnits  *float64          `json:"realized_units,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        int               `json:"version"`
}

// Clone returns a deep copy so callers never share mutable state with the
// ledger.
func (b *BetRecord) Clone() *BetRecord {
	c := *b
	c.Recommendation = b.Recommendation.Clone()
	if b.Outcome != nil {
		o := *b.Outcome
		c.Outcome = &o
	}
	if b.RealizedUnits != nil {
		u := *b.RealizedUnits
		c.RealizedUnits = &u
	}
	return &c
}

// ShortID returns the first 8 characters of the identifier.
func (b *BetRecord) ShortID() string {
	if len(b.ID) < 8 {
		return b.ID
	}
	return b.ID[:8]
}

func (b *BetRecord) String() string {
	return fmt.Sprintf("%s [%s] %s", b.ShortID(), b.State, b.Recommendation.Summary())
}
