package estimator

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func stats(off, def, pace float64) *types.TeamStats {
	return &types.TeamStats{OffensiveEfficiency: off, DefensiveEfficiency: def, Pace: pace}
}

func request(g *types.Game, q types.Quote) types.EstimateRequest {
	return types.EstimateRequest{
		Game: g,
		Selection: types.MarketSelection{
			GameID:     g.ID,
			MarketType: q.MarketType,
			Quote:      q,
		},
	}
}

func evenGame() *types.Game {
	return &types.Game{
		ID:        "g1",
		HomeTeam:  "Home",
		AwayTeam:  "Away",
		HomeStats: stats(110, 100, 70),
		AwayStats: stats(110, 100, 70),
	}
}

func TestBaseline_EvenTeamsHomeCourt(t *testing.T) {
	b := NewBaseline()
	g := evenGame()

	home, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketMoneyline, Side: types.SideHome, DecimalOdds: 1.9,
	}))
	require.NoError(t, err)
	away, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketMoneyline, Side: types.SideAway, DecimalOdds: 1.9,
	}))
	require.NoError(t, err)

	assert.Greater(t, home.Probability, 0.5)
	assert.InDelta(t, 1.0, home.Probability+away.Probability, 1e-9)
	assert.Equal(t, "baseline", home.Source)
	assert.Equal(t, 0.6, home.Confidence)
}

func TestBaseline_SpreadAtExpectedMarginIsCoinFlip(t *testing.T) {
	b := NewBaseline()
	g := evenGame()

	// even teams, home expected by the home-court edge
	est, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketSpread, Side: types.SideHome, DecimalOdds: 1.91, Line: ptr(-3.0),
	}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, est.Probability, 1e-9)

	away, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketSpread, Side: types.SideAway, DecimalOdds: 1.91, Line: ptr(3.0),
	}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, away.Probability, 1e-9)
}

func TestBaseline_Total(t *testing.T) {
	b := NewBaseline()
	g := evenGame()
	// 105 points each at pace 70 -> 73.5 each, 147 total

	over, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketTotal, Side: types.SideOver, DecimalOdds: 1.91, Line: ptr(140.5),
	}))
	require.NoError(t, err)
	under, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketTotal, Side: types.SideUnder, DecimalOdds: 1.91, Line: ptr(140.5),
	}))
	require.NoError(t, err)

	assert.Greater(t, over.Probability, 0.6)
	assert.InDelta(t, 1.0, over.Probability+under.Probability, 1e-9)

	var trace baselineTrace
	require.NoError(t, json.Unmarshal(over.Reasoning, &trace))
	assert.InDelta(t, 147.0, trace.ExpectedTotal, 1e-6)
}

func TestBaseline_ClampsProbability(t *testing.T) {
	b := NewBaseline()
	g := &types.Game{
		ID:        "g1",
		HomeStats: stats(130, 85, 75),
		AwayStats: stats(85, 130, 75),
	}

	est, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketMoneyline, Side: types.SideHome, DecimalOdds: 1.01,
	}))
	require.NoError(t, err)
	assert.Equal(t, maxProbability, est.Probability)
}

func TestBaseline_OneTeamLowersConfidence(t *testing.T) {
	b := NewBaseline()
	g := evenGame()
	g.AwayStats = nil

	est, err := b.Estimate(context.Background(), request(g, types.Quote{
		MarketType: types.MarketMoneyline, Side: types.SideHome, DecimalOdds: 1.9,
	}))
	require.NoError(t, err)
	assert.Equal(t, 0.45, est.Confidence)
}

func TestBaseline_Errors(t *testing.T) {
	b := NewBaseline()

	t.Run("no-stats", func(t *testing.T) {
		g := &types.Game{ID: "g1"}
		_, err := b.Estimate(context.Background(), request(g, types.Quote{
			MarketType: types.MarketMoneyline, Side: types.SideHome, DecimalOdds: 1.9,
		}))
		assert.ErrorIs(t, err, types.ErrNoData)
	})

	t.Run("missing-line", func(t *testing.T) {
		_, err := b.Estimate(context.Background(), request(evenGame(), types.Quote{
			MarketType: types.MarketSpread, Side: types.SideHome, DecimalOdds: 1.9,
		}))
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}
