package ledger

import (
	"time"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// CreateTestRecommendation builds a recommended bet on the away side of a
// spread at -110 with the given stake.
func CreateTestRecommendation(gameID string, units float64) types.BetRecommendation {
	line := 7.5
	start := time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC)

	return types.BetRecommendation{
		Game: types.GameSummary{
			ID:        gameID,
			HomeTeam:  "UConn Huskies",
			AwayTeam:  "Villanova Wildcats",
			StartTime: start,
		},
		Selection: types.MarketSelection{
			GameID:     gameID,
			MarketType: types.MarketSpread,
			Quote: types.Quote{
				MarketType:   types.MarketSpread,
				Side:         types.SideAway,
				DecimalOdds:  1.0 + 100.0/110.0,
				AmericanOdds: -110,
				Line:         &line,
				Sportsbook:   "fanduel",
			},
			Rationale: "test selection",
		},
		Estimate: types.ProbabilityEstimate{
			Probability: 0.56,
			Confidence:  0.7,
			Reasoning:   []byte(`{"note":"test"}`),
			Source:      "test",
		},
		EV: types.EVResult{
			EV:             0.0691,
			Threshold:      0.035,
			MeetsThreshold: true,
		},
		Stake: types.StakeResult{
			KellyFraction: 0.25,
			Units:         units,
			MeetsFloor:    units > 0,
		},
		IsRecommended: units > 0,
		EvaluatedAt:   start.Add(-6 * time.Hour),
	}
}
