package edge

import (
	"fmt"
	"math"

	"github.com/mselser95/hoops-edge/pkg/oddsmath"
	"github.com/mselser95/hoops-edge/pkg/types"
)

// DefaultMinEV is the suppression threshold applied when none is configured.
const DefaultMinEV = 0.035

// Evaluator computes expected value and applies the suppression threshold.
type Evaluator struct {
	minEV float64
}

// NewEvaluator creates an evaluator with the given EV threshold.
func NewEvaluator(minEV float64) *Evaluator {
	return &Evaluator{minEV: minEV}
}

// Threshold returns the configured EV threshold.
func (e *Evaluator) Threshold() float64 {
	return e.minEV
}

// Evaluate returns the EV of a one-unit stake at decimal odds d when the
// true win probability is p.
func (e *Evaluator) Evaluate(p, d float64) (types.EVResult, error) {
	ev, err := ExpectedValue(p, d)
	if err != nil {
		return types.EVResult{}, err
	}

	implied := 1 / d
	return types.EVResult{
		EV:                 ev,
		ImpliedProbability: implied,
		Edge:               p - implied,
		Threshold:          e.minEV,
		MeetsThreshold:     ev >= e.minEV,
	}, nil
}

// ExpectedValue returns p*d - 1.
func ExpectedValue(p, d float64) (float64, error) {
	err := validate(p, d)
	if err != nil {
		return 0, err
	}
	return p*d - 1, nil
}

func validate(p, d float64) error {
	if !oddsmath.ValidProbability(p) {
		return fmt.Errorf("%w: got %v", types.ErrInvalidProbability, p)
	}
	if !oddsmath.ValidDecimal(d) {
		return fmt.Errorf("%w: got %v", types.ErrInvalidOdds, d)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
