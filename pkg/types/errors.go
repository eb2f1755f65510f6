package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Callers branch with errors.Is / errors.As.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidProbability  = fmt.Errorf("%w: probability must be strictly between 0 and 1", ErrInvalidInput)
	ErrInvalidOdds         = fmt.Errorf("%w: decimal odds must be greater than 1", ErrInvalidInput)
	ErrNotRecommended      = fmt.Errorf("%w: recommendation is not marked as recommended", ErrInvalidInput)
	ErrIncompleteMarket    = errors.New("incomplete market")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrAlreadySettled      = errors.New("already settled")
	ErrNotFound            = errors.New("not found")
	ErrAmbiguousIdentifier = errors.New("ambiguous identifier")
	ErrExternalCallFailed  = errors.New("external call failed")
	ErrDuplicateMarket     = errors.New("duplicate market")
	ErrNoData              = errors.New("no team statistics available")
	ErrCancelled           = errors.New("evaluation cancelled")
	ErrConflict            = errors.New("concurrent update conflict")
)

// MarketError attaches the game and market a failure belongs to.
type MarketError struct {
	GameID     string
	MarketType MarketType
	Err        error
}

func (e *MarketError) Error() string {
	return fmt.Sprintf("game %s %s: %v", e.GameID, e.MarketType, e.Err)
}

func (e *MarketError) Unwrap() error {
	return e.Err
}

// TransitionError reports a lifecycle command that the current state does
// not allow.
type TransitionError struct {
	ID   string
	From BetState
	To   BetState
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("bet %s: %s -> %s: %v", e.ID, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// AmbiguousError lists every identifier matching a prefix.
type AmbiguousError struct {
	Prefix     string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("prefix %q matches %d bets: %s", e.Prefix, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguousIdentifier
}
