package storage

import (
	"bytes"
	"testing"

	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConsoleReporter_PrintSlate(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, zap.NewNop())

	rec := ledger.CreateTestRecommendation("game-1", 1.25)
	suppressed := ledger.CreateTestRecommendation("game-2", 0)
	suppressed.Suppression = types.SuppressBelowThreshold

	r.PrintSlate(&types.DailySlate{
		Date:             "2026-02-14",
		GamesConsidered:  8,
		GamesAnalyzed:    5,
		Recommendations:  []types.BetRecommendation{rec},
		Suppressed:       []types.BetRecommendation{suppressed},
		Omissions:        []types.Omission{{GameID: "game-9", Reason: "game_cap"}},
		TotalUnitsAtRisk: 1.25,
		Partial:          true,
	})

	out := buf.String()
	assert.Contains(t, out, "DAILY SLATE 2026-02-14")
	assert.Contains(t, out, "8 considered, 5 analyzed")
	assert.Contains(t, out, "Villanova Wildcats @ UConn Huskies")
	assert.Contains(t, out, "below_ev_threshold")
	assert.Contains(t, out, "game-9 all: game_cap")
	assert.Contains(t, out, "PARTIAL")
}

func TestConsoleReporter_PrintBets(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, nil)

	rec := testRecord("abcdef123456")
	win := types.OutcomeWin
	realized := 1.14
	rec.State = types.StateSettledWin
	rec.Outcome = &win
	rec.RealizedUnits = &realized

	r.PrintBets([]*types.BetRecord{rec})

	out := buf.String()
	assert.Contains(t, out, "BETS (1)")
	assert.Contains(t, out, "abcdef12 [settled_win]")
	assert.Contains(t, out, "realized +1.14u")
}

func TestConsoleReporter_PrintBankroll(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, nil)

	r.PrintBankroll(types.BankrollState{
		StartingBankroll: 1000,
		UnitValue:        10,
		Balance:          1011.4,
		RealizedUnits:    1.14,
		RealizedPL:       11.4,
		Wins:             1,
		ROI:              0.912,
	})

	out := buf.String()
	assert.Contains(t, out, "Balance:    $1011.40")
	assert.Contains(t, out, "Record:     1-0-0")
	assert.Contains(t, out, "ROI:        +91.20%")
}
