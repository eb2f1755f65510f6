package oddsmath

import (
	"fmt"
	"math"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// AmericanToDecimal converts American odds to decimal odds.
// +150 -> 2.50, -110 -> 1.909.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("%w: american odds cannot be 0", types.ErrInvalidOdds)
	}

	if american > 0 {
		return float64(american)/100.0 + 1.0, nil
	}

	return 100.0/float64(-american) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds, rounded to the
// nearest integer.
func DecimalToAmerican(decimal float64) (int, error) {
	if !ValidDecimal(decimal) {
		return 0, fmt.Errorf("%w: got %v", types.ErrInvalidOdds, decimal)
	}

	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}

	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// ImpliedProbability returns 1/d.
func ImpliedProbability(decimal float64) (float64, error) {
	if !ValidDecimal(decimal) {
		return 0, fmt.Errorf("%w: got %v", types.ErrInvalidOdds, decimal)
	}
	return 1.0 / decimal, nil
}

// ValidDecimal reports whether d is a usable decimal price.
func ValidDecimal(d float64) bool {
	return d > 1.0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// ValidProbability reports whether p is strictly inside (0, 1).
func ValidProbability(p float64) bool {
	return p > 0 && p < 1 && !math.IsNaN(p)
}

// Overround returns the bookmaker margin of a two-way market:
// 1/d1 + 1/d2 - 1. Lower means tighter pricing.
func Overround(d1, d2 float64) (float64, error) {
	if !ValidDecimal(d1) || !ValidDecimal(d2) {
		return 0, fmt.Errorf("%w: got %v / %v", types.ErrInvalidOdds, d1, d2)
	}
	return 1/d1 + 1/d2 - 1, nil
}

// NoVigProbability removes the margin from a two-way market
// multiplicatively and returns the fair probability of the first side.
func NoVigProbability(d1, d2 float64) (float64, error) {
	if !ValidDecimal(d1) || !ValidDecimal(d2) {
		return 0, fmt.Errorf("%w: got %v / %v", types.ErrInvalidOdds, d1, d2)
	}
	p1, p2 := 1/d1, 1/d2
	return p1 / (p1 + p2), nil
}
