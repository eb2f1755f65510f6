package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oddsServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/basketball_ncaab/odds", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apiKey"))
		assert.Equal(t, "spreads,totals,h2h", q.Get("markets"))
		assert.Equal(t, "fanduel", q.Get("bookmakers"))
		assert.Equal(t, "american", q.Get("oddsFormat"))

		w.Header().Set("x-requests-remaining", "480")
		w.Header().Set("x-requests-used", "20")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOddsAPIClient_Games(t *testing.T) {
	body, err := os.ReadFile("testdata/odds_response.json")
	require.NoError(t, err)
	server := oddsServer(t, http.StatusOK, body)

	book, err := LoadStatsBook("testdata/teams.yaml")
	require.NoError(t, err)

	client := NewOddsAPIClient(OddsAPIConfig{BaseURL: server.URL, APIKey: "test-key", Stats: book})
	games, err := client.Games(context.Background())
	require.NoError(t, err)

	// evt-2 has only a moneyline and is skipped
	require.Len(t, games, 1)
	g := games[0]
	assert.Equal(t, "evt-1", g.ID)
	assert.Equal(t, "UConn Huskies", g.HomeTeam)
	assert.Equal(t, 2026, g.StartTime.Year())
	require.NotNil(t, g.HomeStats)
	require.NotNil(t, g.AwayStats)
	assert.Equal(t, "villanova", g.AwayStats.TeamID)

	require.Len(t, g.Quotes, 6, "only the configured bookmaker is read")

	spread := g.QuotesFor(types.MarketSpread)
	require.Len(t, spread, 2)
	assert.Equal(t, types.SideHome, spread[0].Side)
	require.NotNil(t, spread[0].Line)
	assert.Equal(t, -7.5, *spread[0].Line)
	assert.InDelta(t, 1.909, spread[0].DecimalOdds, 0.001)
	assert.Equal(t, "fanduel", spread[0].Sportsbook)

	total := g.QuotesFor(types.MarketTotal)
	require.Len(t, total, 2)
	assert.Equal(t, types.SideOver, total[0].Side)
	assert.Equal(t, types.SideUnder, total[1].Side)

	ml := g.QuotesFor(types.MarketMoneyline)
	require.Len(t, ml, 2)
	assert.Nil(t, ml[0].Line)
	assert.InDelta(t, 3.6, ml[1].DecimalOdds, 1e-9)
}

func TestOddsAPIClient_Errors(t *testing.T) {
	t.Run("missing-key", func(t *testing.T) {
		client := NewOddsAPIClient(OddsAPIConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := client.Games(context.Background())
		assert.ErrorIs(t, err, types.ErrExternalCallFailed)
	})

	t.Run("bad-status", func(t *testing.T) {
		server := oddsServer(t, http.StatusUnauthorized, []byte(`{"message":"bad key"}`))
		client := NewOddsAPIClient(OddsAPIConfig{BaseURL: server.URL, APIKey: "test-key"})
		_, err := client.Games(context.Background())
		require.ErrorIs(t, err, types.ErrExternalCallFailed)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("malformed-body", func(t *testing.T) {
		server := oddsServer(t, http.StatusOK, []byte(`[{"id":`))
		client := NewOddsAPIClient(OddsAPIConfig{BaseURL: server.URL, APIKey: "test-key"})
		_, err := client.Games(context.Background())
		assert.ErrorIs(t, err, types.ErrExternalCallFailed)
	})
}

func TestOutcomeSide(t *testing.T) {
	tests := []struct {
		market types.MarketType
		name   string
		want   types.Side
	}{
		{types.MarketSpread, "Home U", types.SideHome},
		{types.MarketSpread, "Away U", types.SideAway},
		{types.MarketMoneyline, "Home U", types.SideHome},
		{types.MarketTotal, "Over", types.SideOver},
		{types.MarketTotal, "Under", types.SideUnder},
	}

	for _, tt := range tests {
		t.Run(string(tt.market)+"-"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outcomeSide(tt.market, tt.name, "Home U"))
		})
	}
}
