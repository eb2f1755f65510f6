package estimator

import (
	"context"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// Estimator produces a win probability for one market selection.
type Estimator interface {
	Estimate(ctx context.Context, req types.EstimateRequest) (types.ProbabilityEstimate, error)
}
