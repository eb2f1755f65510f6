package slate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mselser95/hoops-edge/internal/edge"
	"github.com/mselser95/hoops-edge/internal/selector"
	"github.com/mselser95/hoops-edge/pkg/oddsmath"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Estimator produces a win probability for one selection.
type Estimator interface {
	Estimate(ctx context.Context, req types.EstimateRequest) (types.ProbabilityEstimate, error)
}

// UnitValuer exposes the currency value of one unit.
type UnitValuer interface {
	UnitValue() float64
}

// Config holds aggregator configuration.
type Config struct {
	Estimator       Estimator
	Evaluator       *edge.Evaluator
	Sizer           *edge.Sizer
	Bankroll        UnitValuer
	MinConfidence   float64
	Concurrency     int
	EstimateTimeout time.Duration
	Logger          *zap.Logger
	Now             func() time.Time
}

// Options tune a single run.
type Options struct {
	// MaxGames caps how many ranked games are evaluated. Zero means all.
	MaxGames int
}

// Aggregator evaluates every selected market of a slate concurrently and
// folds the results into a DailySlate.
type Aggregator struct {
	config Config
	logger *zap.Logger
}

// New creates an aggregator.
func New(cfg Config) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Evaluator == nil {
		cfg.Evaluator = edge.NewEvaluator(edge.DefaultMinEV)
	}
	if cfg.Sizer == nil {
		cfg.Sizer = edge.NewSizer(edge.DefaultSizerConfig())
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Aggregator{config: cfg, logger: cfg.Logger}
}

type task struct {
	game      *types.Game
	selection types.MarketSelection
}

type result struct {
	rec      *types.BetRecommendation
	omission *types.Omission
}

// Run evaluates games and returns the slate. Cancelling ctx abandons
// in-flight estimator calls; evaluations already completed are kept and the
// slate is marked partial.
func (a *Aggregator) Run(ctx context.Context, games []types.Game, opts Options) (*types.DailySlate, error) {
	if a.config.Estimator == nil {
		return nil, fmt.Errorf("%w: no estimator configured", types.ErrInvalidInput)
	}

	start := time.Now()
	now := a.config.Now()
	out := &types.DailySlate{
		Date:            now.Format("2006-01-02"),
		GeneratedAt:     now.UTC(),
		GamesConsidered: len(games),
		Recommendations: []types.BetRecommendation{},
		Suppressed:      []types.BetRecommendation{},
		Omissions:       []types.Omission{},
	}

	a.logger.Info("slate-run-starting",
		zap.Int("games", len(games)),
		zap.Int("max-games", opts.MaxGames),
		zap.Int("concurrency", a.config.Concurrency))

	ranked := rankGames(games)
	if opts.MaxGames > 0 && len(ranked) > opts.MaxGames {
		for _, g := range ranked[opts.MaxGames:] {
			out.Omissions = append(out.Omissions, types.Omission{GameID: g.ID, Reason: ReasonGameCap})
			OmissionsTotal.WithLabelValues(ReasonGameCap).Inc()
		}
		ranked = ranked[:opts.MaxGames]
	}

	var tasks []task
	for _, g := range ranked {
		selections, errs := selector.Select(g)
		for _, err := range errs {
			out.Omissions = append(out.Omissions, a.omit(g.ID, marketOf(err), err))
		}

		if g.StatsCount() == 0 {
			for _, sel := range selections {
				out.Omissions = append(out.Omissions, a.omit(g.ID, sel.MarketType, types.ErrNoData))
			}
			continue
		}

		if len(selections) > 0 {
			out.GamesAnalyzed++
		}
		for _, sel := range selections {
			tasks = append(tasks, task{game: g, selection: sel})
		}
	}

	results := make([]result, len(tasks))
	// calls counts estimator invocations still running. A call abandoned on
	// timeout keeps its slot until it returns.
	calls := make(chan struct{}, a.config.Concurrency)
	var eg errgroup.Group
	eg.SetLimit(a.config.Concurrency)
	for i := range tasks {
		eg.Go(func() error {
			results[i] = a.evaluate(ctx, tasks[i], calls)
			return nil
		})
	}
	_ = eg.Wait()

	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if r.omission != nil {
			out.Omissions = append(out.Omissions, *r.omission)
			if errors.Is(r.omission.Err, types.ErrCancelled) {
				out.Partial = true
			}
			continue
		}

		key := r.rec.Selection.Key()
		if _, dup := seen[key]; dup {
			err := &types.MarketError{GameID: r.rec.Game.ID, MarketType: r.rec.Selection.MarketType, Err: types.ErrDuplicateMarket}
			out.Omissions = append(out.Omissions, a.omit(r.rec.Game.ID, r.rec.Selection.MarketType, err))
			continue
		}
		seen[key] = struct{}{}

		if r.rec.IsRecommended {
			out.Recommendations = append(out.Recommendations, *r.rec)
			out.TotalUnitsAtRisk += r.rec.Stake.Units
			EvaluationsTotal.WithLabelValues("recommended").Inc()
		} else {
			out.Suppressed = append(out.Suppressed, *r.rec)
			EvaluationsTotal.WithLabelValues("suppressed").Inc()
		}
	}

	sortRecommendations(out.Recommendations)
	sortRecommendations(out.Suppressed)
	out.TotalUnitsAtRisk = math.Round(out.TotalUnitsAtRisk*100) / 100
	if ctx.Err() != nil {
		out.Partial = true
	}

	RunDurationSeconds.Observe(time.Since(start).Seconds())
	a.logger.Info("slate-run-complete",
		zap.Int("games-analyzed", out.GamesAnalyzed),
		zap.Int("recommended", len(out.Recommendations)),
		zap.Int("suppressed", len(out.Suppressed)),
		zap.Int("omitted", len(out.Omissions)),
		zap.Float64("units-at-risk", out.TotalUnitsAtRisk),
		zap.Bool("partial", out.Partial),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}

// evaluate runs one task to completion. It returns either a full
// recommendation or an omission.
func (a *Aggregator) evaluate(ctx context.Context, t task, calls chan struct{}) result {
	gameID, market := t.game.ID, t.selection.MarketType

	if ctx.Err() != nil {
		return result{omission: a.omitPtr(gameID, market, types.ErrCancelled)}
	}

	est, err := a.estimate(ctx, t, calls)
	if err != nil {
		return result{omission: a.omitPtr(gameID, market, err)}
	}

	if !oddsmath.ValidProbability(est.Probability) {
		return result{omission: a.omitPtr(gameID, market, fmt.Errorf("%w: estimator returned %v", types.ErrInvalidProbability, est.Probability))}
	}
	if est.Confidence < 0 || est.Confidence > 1 || math.IsNaN(est.Confidence) {
		return result{omission: a.omitPtr(gameID, market, fmt.Errorf("%w: confidence %v outside [0, 1]", types.ErrInvalidInput, est.Confidence))}
	}

	d := t.selection.Quote.DecimalOdds
	ev, err := a.config.Evaluator.Evaluate(est.Probability, d)
	if err != nil {
		return result{omission: a.omitPtr(gameID, market, err)}
	}
	stake, err := a.config.Sizer.Size(est.Probability, d, 0)
	if err != nil {
		return result{omission: a.omitPtr(gameID, market, err)}
	}
	if a.config.Bankroll != nil {
		stake.Currency = math.Round(stake.Units*a.config.Bankroll.UnitValue()*100) / 100
	}

	rec := &types.BetRecommendation{
		Game:        t.game.Summary(),
		Selection:   t.selection,
		Estimate:    est,
		EV:          ev,
		Stake:       stake,
		EvaluatedAt: a.config.Now().UTC(),
	}

	switch {
	case !ev.MeetsThreshold:
		rec.Suppression = types.SuppressBelowThreshold
	case est.Confidence < a.config.MinConfidence:
		rec.Suppression = types.SuppressLowConfidence
	case !stake.MeetsFloor:
		rec.Suppression = types.SuppressBelowFloor
	default:
		rec.IsRecommended = true
	}

	a.logger.Debug("market-evaluated",
		zap.String("game-id", gameID),
		zap.String("market", string(market)),
		zap.String("side", string(t.selection.Quote.Side)),
		zap.Float64("probability", est.Probability),
		zap.Float64("ev", ev.EV),
		zap.Float64("units", stake.Units),
		zap.Bool("recommended", rec.IsRecommended))

	return result{rec: rec}
}

type estimateResult struct {
	est types.ProbabilityEstimate
	err error
}

// estimate calls the estimator and gives up as soon as ctx or the
// per-call timeout fires, leaving the call to finish in the background.
// The call holds a slot in calls until the estimator returns, so at most
// cap(calls) estimator calls run at once even when an estimator ignores
// its context.
func (a *Aggregator) estimate(ctx context.Context, t task, calls chan struct{}) (types.ProbabilityEstimate, error) {
	callCtx := ctx
	if a.config.EstimateTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.config.EstimateTimeout)
		defer cancel()
	}

	select {
	case calls <- struct{}{}:
	case <-callCtx.Done():
		return types.ProbabilityEstimate{}, a.abandoned(ctx)
	}

	req := types.EstimateRequest{Game: t.game, Selection: t.selection}
	ch := make(chan estimateResult, 1)
	start := time.Now()
	go func() {
		defer func() { <-calls }()
		est, err := a.config.Estimator.Estimate(callCtx, req)
		ch <- estimateResult{est: est, err: err}
	}()

	select {
	case r := <-ch:
		EstimatorLatencySeconds.Observe(time.Since(start).Seconds())
		if r.err != nil {
			if ctx.Err() != nil {
				return types.ProbabilityEstimate{}, types.ErrCancelled
			}
			if errors.Is(r.err, types.ErrExternalCallFailed) {
				return types.ProbabilityEstimate{}, r.err
			}
			return types.ProbabilityEstimate{}, fmt.Errorf("%w: %w", types.ErrExternalCallFailed, r.err)
		}
		return r.est, nil
	case <-callCtx.Done():
		return types.ProbabilityEstimate{}, a.abandoned(ctx)
	}
}

// abandoned reports why an estimate was given up on.
func (a *Aggregator) abandoned(ctx context.Context) error {
	if ctx.Err() != nil {
		return types.ErrCancelled
	}
	return fmt.Errorf("%w: estimate timed out after %s", types.ErrExternalCallFailed, a.config.EstimateTimeout)
}

func (a *Aggregator) omit(gameID string, market types.MarketType, err error) types.Omission {
	reason := ReasonFor(err)
	OmissionsTotal.WithLabelValues(reason).Inc()

	fields := []zap.Field{
		zap.String("game-id", gameID),
		zap.String("market", string(market)),
		zap.String("reason", reason),
		zap.Error(err),
	}
	switch reason {
	case ReasonDuplicateMarket:
		DuplicatesDroppedTotal.Inc()
		a.logger.Warn("duplicate-market-dropped", fields...)
	case ReasonExternalCallFailed, ReasonInvalidInput:
		a.logger.Warn("market-omitted", fields...)
	default:
		a.logger.Debug("market-omitted", fields...)
	}

	return types.Omission{GameID: gameID, MarketType: market, Reason: reason, Err: err}
}

func (a *Aggregator) omitPtr(gameID string, market types.MarketType, err error) *types.Omission {
	o := a.omit(gameID, market, err)
	return &o
}

func marketOf(err error) types.MarketType {
	var me *types.MarketError
	if errors.As(err, &me) {
		return me.MarketType
	}
	return ""
}

// rankGames orders games by statistics richness, then pricing tightness,
// then start time and ID so equal inputs always rank the same way.
func rankGames(games []types.Game) []*types.Game {
	ranked := make([]*types.Game, len(games))
	overround := make(map[*types.Game]float64, len(games))
	for i := range games {
		g := &games[i]
		ranked[i] = g
		overround[g] = PricingScore(g)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		gi, gj := ranked[i], ranked[j]
		if si, sj := gi.StatsCount(), gj.StatsCount(); si != sj {
			return si > sj
		}
		if oi, oj := overround[gi], overround[gj]; oi != oj {
			return oi < oj
		}
		if !gi.StartTime.Equal(gj.StartTime) {
			return gi.StartTime.Before(gj.StartTime)
		}
		return gi.ID < gj.ID
	})
	return ranked
}

// PricingScore is the mean overround of a game's complete two-sided
// markets. Lower is tighter. Games without a complete market score +Inf.
func PricingScore(g *types.Game) float64 {
	var sum float64
	var n int
	for _, m := range types.MarketTypes {
		quotes := g.QuotesFor(m)
		if len(quotes) != 2 || quotes[0].Side == quotes[1].Side {
			continue
		}
		o, err := oddsmath.Overround(quotes[0].DecimalOdds, quotes[1].DecimalOdds)
		if err != nil {
			continue
		}
		sum += o
		n++
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}

func sortRecommendations(recs []types.BetRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := recs[i], recs[j]
		if ri.EV.EV != rj.EV.EV {
			return ri.EV.EV > rj.EV.EV
		}
		if ri.Stake.Units != rj.Stake.Units {
			return ri.Stake.Units > rj.Stake.Units
		}
		if ri.Game.ID != rj.Game.ID {
			return ri.Game.ID < rj.Game.ID
		}
		return marketOrder(ri.Selection.MarketType) < marketOrder(rj.Selection.MarketType)
	})
}

func marketOrder(m types.MarketType) int {
	for i, t := range types.MarketTypes {
		if t == m {
			return i
		}
	}
	return len(types.MarketTypes)
}
