package estimator

import (
	"context"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/types"
)

// Baseline model parameters for college basketball.
const (
	defaultHomeCourt   = 3.0
	defaultMarginSigma = 11.0
	defaultTotalSigma  = 13.0
	leagueEfficiency   = 105.0
	leaguePace         = 68.0
	minProbability     = 0.02
	maxProbability     = 0.98
)

// Baseline estimates probabilities from team efficiency statistics with a
// normal approximation of scoring margin and total. It needs no network and
// gives the same answer for the same input, which makes it the default for
// offline and dry runs.
type Baseline struct {
	HomeCourt   float64
	MarginSigma float64
	TotalSigma  float64
}

// NewBaseline creates a baseline estimator with default parameters.
func NewBaseline() *Baseline {
	return &Baseline{
		HomeCourt:   defaultHomeCourt,
		MarginSigma: defaultMarginSigma,
		TotalSigma:  defaultTotalSigma,
	}
}

type baselineTrace struct {
	Model          string   `json:"model"`
	StatsUsed      int      `json:"stats_used"`
	Pace           float64  `json:"pace"`
	HomePoints     float64  `json:"home_points"`
	AwayPoints     float64  `json:"away_points"`
	ExpectedMargin float64  `json:"expected_margin"`
	ExpectedTotal  float64  `json:"expected_total"`
	Line           *float64 `json:"line,omitempty"`
	ZScore         float64  `json:"z_score"`
}

// Estimate implements Estimator.
func (b *Baseline) Estimate(ctx context.Context, req types.EstimateRequest) (types.ProbabilityEstimate, error) {
	g, q := req.Game, req.Selection.Quote
	if req.Game.StatsCount() == 0 {
		return types.ProbabilityEstimate{}, types.ErrNoData
	}

	home, away := orLeague(g.HomeStats), orLeague(g.AwayStats)
	pace := (home.Pace + away.Pace) / 2
	homePts := (home.OffensiveEfficiency + away.DefensiveEfficiency) / 2 * pace / 100
	awayPts := (away.OffensiveEfficiency + home.DefensiveEfficiency) / 2 * pace / 100
	margin := homePts - awayPts + b.HomeCourt
	total := homePts + awayPts

	trace := baselineTrace{
		Model:          "efficiency-baseline",
		StatsUsed:      g.StatsCount(),
		Pace:           round3(pace),
		HomePoints:     round3(homePts),
		AwayPoints:     round3(awayPts),
		ExpectedMargin: round3(margin),
		ExpectedTotal:  round3(total),
		Line:           q.Line,
	}

	var z float64
	switch q.MarketType {
	case types.MarketMoneyline:
		z = margin / b.MarginSigma
		if q.Side == types.SideAway {
			z = -z
		}
	case types.MarketSpread:
		if q.Line == nil {
			return types.ProbabilityEstimate{}, fmt.Errorf("%w: spread quote without a line", types.ErrInvalidInput)
		}
		// the side covers when its own margin plus its line is positive
		sideMargin := margin
		if q.Side == types.SideAway {
			sideMargin = -margin
		}
		z = (sideMargin + *q.Line) / b.MarginSigma
	case types.MarketTotal:
		if q.Line == nil {
			return types.ProbabilityEstimate{}, fmt.Errorf("%w: total quote without a line", types.ErrInvalidInput)
		}
		z = (total - *q.Line) / b.TotalSigma
		if q.Side == types.SideUnder {
			z = -z
		}
	default:
		return types.ProbabilityEstimate{}, fmt.Errorf("%w: unknown market %q", types.ErrInvalidInput, q.MarketType)
	}
	trace.ZScore = round3(z)

	p := math.Min(maxProbability, math.Max(minProbability, normalCDF(z)))

	reasoning, err := json.Marshal(trace)
	if err != nil {
		return types.ProbabilityEstimate{}, fmt.Errorf("marshal reasoning: %w", err)
	}

	confidence := 0.6
	if g.StatsCount() < 2 {
		confidence = 0.45
	}

	EstimateRequestsTotal.WithLabelValues("baseline", "ok").Inc()
	return types.ProbabilityEstimate{
		Probability: p,
		Confidence:  confidence,
		Reasoning:   reasoning,
		Source:      "baseline",
	}, nil
}

func orLeague(s *types.TeamStats) types.TeamStats {
	if s != nil {
		return *s
	}
	return types.TeamStats{
		OffensiveEfficiency: leagueEfficiency,
		DefensiveEfficiency: leagueEfficiency,
		Pace:                leaguePace,
	}
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
