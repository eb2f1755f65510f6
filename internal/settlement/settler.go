package settlement

import (
	"context"
	"fmt"

	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// Ledger is the part of the bet ledger the settler needs.
type Ledger interface {
	List(ctx context.Context, filter ledger.Filter) ([]*types.BetRecord, error)
	Settle(ctx context.Context, ref string, outcome types.Outcome, realizedUnits float64) (*types.BetRecord, error)
}

// Summary counts what one auto-settle pass did.
type Summary struct {
	Checked   int                `json:"checked"`
	Wins      int                `json:"wins"`
	Losses    int                `json:"losses"`
	Pushes    int                `json:"pushes"`
	Unmatched int                `json:"unmatched"`
	Failed    int                `json:"failed"`
	Settled   []*types.BetRecord `json:"settled"`
}

// Settler grades approved bets whose games have finished.
type Settler struct {
	scores ScoreSource
	ledger Ledger
	logger *zap.Logger
}

// NewSettler creates a settler.
func NewSettler(scores ScoreSource, l Ledger, logger *zap.Logger) *Settler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Settler{scores: scores, ledger: l, logger: logger}
}

// Run settles every approved bet with a matching final score. A bet that
// fails to settle is counted and skipped; the pass continues.
func (s *Settler) Run(ctx context.Context) (*Summary, error) {
	approved, err := s.ledger.List(ctx, ledger.Filter{State: types.StateApproved})
	if err != nil {
		return nil, fmt.Errorf("list approved bets: %w", err)
	}

	summary := &Summary{Checked: len(approved)}
	if len(approved) == 0 {
		return summary, nil
	}

	scores, err := s.scores.Completed(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}

	for _, bet := range approved {
		game := bet.Recommendation.Game
		score := Match(game.HomeTeam, game.AwayTeam, scores)
		if score == nil {
			summary.Unmatched++
			AutoSettleUnmatchedTotal.Inc()
			continue
		}

		outcome, realized, err := Grade(bet, *score)
		if err != nil {
			summary.Failed++
			s.logger.Warn("auto-settle-grade-failed", zap.String("bet-id", bet.ID), zap.Error(err))
			continue
		}

		settled, err := s.ledger.Settle(ctx, bet.ID, outcome, realized)
		if err != nil {
			summary.Failed++
			s.logger.Warn("auto-settle-failed", zap.String("bet-id", bet.ID), zap.Error(err))
			continue
		}

		switch outcome {
		case types.OutcomeWin:
			summary.Wins++
		case types.OutcomeLoss:
			summary.Losses++
		case types.OutcomePush:
			summary.Pushes++
		}
		summary.Settled = append(summary.Settled, settled)
		AutoSettledTotal.WithLabelValues(string(outcome)).Inc()

		s.logger.Info("bet-auto-settled",
			zap.String("bet-id", bet.ID),
			zap.String("event-id", score.EventID),
			zap.Int("home-score", score.HomeScore),
			zap.Int("away-score", score.AwayScore),
			zap.String("outcome", string(outcome)),
			zap.Float64("realized-units", realized))
	}

	return summary, nil
}
