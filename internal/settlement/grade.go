// Package settlement grades approved bets against final scores and settles
// them through the ledger.
package settlement

import (
	"fmt"
	"math"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// FinalScore is a completed game. Team names are lowercase display names.
type FinalScore struct {
	EventID   string `json:"event_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// Grade returns the outcome of bet given the final score and the units it
// realizes: stake × (d−1) on a win, −stake on a loss, 0 on a push.
func Grade(bet *types.BetRecord, score FinalScore) (types.Outcome, float64, error) {
	q := bet.Recommendation.Selection.Quote
	home, away := float64(score.HomeScore), float64(score.AwayScore)

	var margin float64
	switch q.MarketType {
	case types.MarketMoneyline:
		margin = home - away
		if q.Side == types.SideAway {
			margin = -margin
		}
	case types.MarketSpread:
		if q.Line == nil {
			return "", 0, fmt.Errorf("%w: spread bet %s has no line", types.ErrInvalidInput, bet.ShortID())
		}
		margin = home + *q.Line - away
		if q.Side == types.SideAway {
			margin = away + *q.Line - home
		}
	case types.MarketTotal:
		if q.Line == nil {
			return "", 0, fmt.Errorf("%w: total bet %s has no line", types.ErrInvalidInput, bet.ShortID())
		}
		margin = home + away - *q.Line
		if q.Side == types.SideUnder {
			margin = -margin
		}
	default:
		return "", 0, fmt.Errorf("%w: unknown market %q", types.ErrInvalidInput, q.MarketType)
	}

	switch {
	case margin > 0:
		return types.OutcomeWin, round2(bet.StakeUnits * (q.DecimalOdds - 1)), nil
	case margin < 0:
		return types.OutcomeLoss, -bet.StakeUnits, nil
	default:
		return types.OutcomePush, 0, nil
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
