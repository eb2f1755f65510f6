package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/hoops-edge/pkg/cache"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// Cached memoizes successful estimates so repeated runs over an unchanged
// slate do not pay for the remote call twice. A changed price or line is a
// different key.
type Cached struct {
	next   Estimator
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps next with cache c.
func NewCached(next Estimator, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, cache: c, ttl: ttl, logger: logger}
}

// Estimate implements Estimator.
func (c *Cached) Estimate(ctx context.Context, req types.EstimateRequest) (types.ProbabilityEstimate, error) {
	key := cacheKey(req)

	if cached, ok := c.cache.Get(key); ok {
		if est, ok := cached.(types.ProbabilityEstimate); ok {
			EstimateCacheHitsTotal.Inc()
			return est, nil
		}
	}
	EstimateCacheMissesTotal.Inc()

	est, err := c.next.Estimate(ctx, req)
	if err != nil {
		return est, err
	}

	if !c.cache.Set(key, est, c.ttl) {
		c.logger.Debug("estimate-cache-set-dropped", zap.String("key", key))
	}
	return est, nil
}

func cacheKey(req types.EstimateRequest) string {
	q := req.Selection.Quote
	line := "-"
	if q.Line != nil {
		line = fmt.Sprintf("%.1f", *q.Line)
	}
	return fmt.Sprintf("estimate:%s:%s:%s:%s:%.4f", req.Game.ID, q.MarketType, q.Side, line, q.DecimalOdds)
}
