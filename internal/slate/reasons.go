package slate

import (
	"errors"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// Omission reasons.
const (
	ReasonGameCap            = "game_cap"
	ReasonNoData             = "no_data"
	ReasonIncompleteMarket   = "incomplete_market"
	ReasonInvalidInput       = "invalid_input"
	ReasonExternalCallFailed = "external_call_failed"
	ReasonCancelled          = "cancelled"
	ReasonDuplicateMarket    = "duplicate_market"
	ReasonUnknown            = "unknown"
)

// ReasonFor maps an evaluation error to its omission reason.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, types.ErrCancelled):
		return ReasonCancelled
	case errors.Is(err, types.ErrDuplicateMarket):
		return ReasonDuplicateMarket
	case errors.Is(err, types.ErrNoData):
		return ReasonNoData
	case errors.Is(err, types.ErrIncompleteMarket):
		return ReasonIncompleteMarket
	case errors.Is(err, types.ErrExternalCallFailed):
		return ReasonExternalCallFailed
	case errors.Is(err, types.ErrInvalidInput):
		return ReasonInvalidInput
	}
	return ReasonUnknown
}
