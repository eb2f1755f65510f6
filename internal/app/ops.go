package app

import (
	"context"
	"fmt"

	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/internal/settlement"
	"github.com/mselser95/hoops-edge/internal/slate"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// AnalyzeSlate fetches the slate, evaluates it and, unless dryRun is set,
// records every recommendation as a pending bet. maxGames <= 0 uses the
// configured cap.
//
// A feed failure is logged and the run proceeds on an empty slate. A
// cancelled run returns a partial slate and no error.
func (a *App) AnalyzeSlate(ctx context.Context, maxGames int, dryRun bool) (*types.DailySlate, []*types.BetRecord, error) {
	if maxGames <= 0 {
		maxGames = a.cfg.MaxGames
	}
	if a.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.RunTimeout)
		defer cancel()
	}

	games, err := a.feed.Games(ctx)
	if err != nil {
		a.logger.Warn("feed-fetch-failed", zap.Error(err))
		games = nil
	}

	result, err := a.aggregator.Run(ctx, games, slate.Options{MaxGames: maxGames})
	if err != nil {
		return nil, nil, fmt.Errorf("run aggregator: %w", err)
	}

	a.mu.Lock()
	a.lastSlate = result
	a.mu.Unlock()
	a.broadcastSlate(result)

	if dryRun {
		a.logger.Info("analyze-slate-dry-run",
			zap.Int("recommended", len(result.Recommendations)))
		return result, nil, nil
	}

	// Recording uses a fresh context so a run cut short by its deadline
	// still books what it produced.
	created := make([]*types.BetRecord, 0, len(result.Recommendations))
	for i := range result.Recommendations {
		bet, err := a.ledger.Create(context.WithoutCancel(ctx), result.Recommendations[i])
		if err != nil {
			return result, created, fmt.Errorf("record recommendation %s: %w",
				result.Recommendations[i].Selection.Key(), err)
		}
		created = append(created, bet)
	}

	if a.notifier != nil {
		err = a.notifier.NotifySlate(result)
		if err != nil {
			a.logger.Warn("slate-notify-failed", zap.Error(err))
		}
	}

	a.logger.Info("analyze-slate-complete",
		zap.String("date", result.Date),
		zap.Int("created", len(created)),
		zap.Float64("units-at-risk", result.TotalUnitsAtRisk),
		zap.Bool("partial", result.Partial))

	return result, created, nil
}

// Slate returns the most recent analysis, or nil before the first run.
func (a *App) Slate() *types.DailySlate {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastSlate
}

// ListBets returns bets in state, or every bet when state is empty.
func (a *App) ListBets(ctx context.Context, state types.BetState) ([]*types.BetRecord, error) {
	return a.ledger.List(ctx, ledger.Filter{State: state})
}

// GetBet resolves ref, a full identifier or unique prefix.
func (a *App) GetBet(ctx context.Context, ref string) (*types.BetRecord, error) {
	return a.ledger.Get(ctx, ref)
}

// Approve moves a pending bet to approved.
func (a *App) Approve(ctx context.Context, ref string) (*types.BetRecord, error) {
	return a.ledger.Approve(ctx, ref)
}

// Reject moves a pending bet to rejected.
func (a *App) Reject(ctx context.Context, ref string) (*types.BetRecord, error) {
	return a.ledger.Reject(ctx, ref)
}

// Settle books a graded result against an approved bet.
func (a *App) Settle(ctx context.Context, ref string, outcome types.Outcome, realizedUnits float64) (*types.BetRecord, error) {
	return a.ledger.Settle(ctx, ref, outcome, realizedUnits)
}

// Bankroll returns a snapshot of the bankroll.
func (a *App) Bankroll() types.BankrollState {
	return a.ledger.Bankroll().Snapshot()
}

// AutoSettle grades approved bets against final scores.
func (a *App) AutoSettle(ctx context.Context) (*settlement.Summary, error) {
	return a.settler.Run(ctx)
}
