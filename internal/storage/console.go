package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleReporter pretty-prints slates, bets and the bankroll.
type ConsoleReporter struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleReporter creates a reporter writing to out, or stdout when out
// is nil.
func NewConsoleReporter(out io.Writer, logger *zap.Logger) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleReporter{out: out, logger: logger}
}

// PrintSlate renders one aggregation run.
func (c *ConsoleReporter) PrintSlate(slate *types.DailySlate) {
	w := c.out
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintf(w, "🏀 DAILY SLATE %s\n", slate.Date)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Games:    %d considered, %d analyzed\n", slate.GamesConsidered, slate.GamesAnalyzed)
	fmt.Fprintf(w, "Bets:     %d recommended, %d suppressed, %d omitted\n",
		len(slate.Recommendations), len(slate.Suppressed), len(slate.Omissions))
	fmt.Fprintf(w, "At risk:  %.2fu\n", slate.TotalUnitsAtRisk)
	if slate.Partial {
		fmt.Fprintf(w, "⚠️  PARTIAL RUN, evaluation was cancelled\n")
	}

	if len(slate.Recommendations) > 0 {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "✅ RECOMMENDED\n")
		for i := range slate.Recommendations {
			r := &slate.Recommendations[i]
			fmt.Fprintf(w, "  %d. %s\n", i+1, r.Summary())
			fmt.Fprintf(w, "     %s\n", r.Selection.Rationale)
		}
	}

	if len(slate.Suppressed) > 0 {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "⏸  SUPPRESSED\n")
		for i := range slate.Suppressed {
			r := &slate.Suppressed[i]
			fmt.Fprintf(w, "  - %s [%s]\n", r.Summary(), r.Suppression)
		}
	}

	if len(slate.Omissions) > 0 {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "🚫 OMITTED\n")
		for _, o := range slate.Omissions {
			market := string(o.MarketType)
			if market == "" {
				market = "all"
			}
			fmt.Fprintf(w, "  - %s %s: %s\n", o.GameID, market, o.Reason)
		}
	}
	fmt.Fprintln(w, rule)
}

// PrintBets renders a list of bet records.
func (c *ConsoleReporter) PrintBets(bets []*types.BetRecord) {
	w := c.out
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintf(w, "📋 BETS (%d)\n", len(bets))
	fmt.Fprintln(w, rule)
	if len(bets) == 0 {
		fmt.Fprintln(w, "  no bets")
	}
	for _, b := range bets {
		fmt.Fprintf(w, "  %s %s\n", stateIcon(b.State), b.String())
		if b.RealizedUnits != nil {
			fmt.Fprintf(w, "      realized %+.2fu\n", *b.RealizedUnits)
		}
	}
	fmt.Fprintln(w, rule)
}

// PrintBet renders one bet after a lifecycle change.
func (c *ConsoleReporter) PrintBet(bet *types.BetRecord) {
	fmt.Fprintf(c.out, "%s %s\n", stateIcon(bet.State), bet.String())
}

// PrintBankroll renders a bankroll snapshot.
func (c *ConsoleReporter) PrintBankroll(s types.BankrollState) {
	w := c.out
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintf(w, "💰 BANKROLL\n")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Starting:   $%.2f\n", s.StartingBankroll)
	fmt.Fprintf(w, "  Balance:    $%.2f\n", s.Balance)
	fmt.Fprintf(w, "  Unit:       $%.2f\n", s.UnitValue)
	fmt.Fprintf(w, "  Realized:   %+.2fu ($%+.2f)\n", s.RealizedUnits, s.RealizedPL)
	fmt.Fprintf(w, "  Record:     %d-%d-%d\n", s.Wins, s.Losses, s.Pushes)
	fmt.Fprintf(w, "  ROI:        %+.2f%%\n", s.ROI*100)
	fmt.Fprintln(w, rule)
}

func stateIcon(s types.BetState) string {
	switch s {
	case types.StatePending:
		return "⏳"
	case types.StateApproved:
		return "👍"
	case types.StateRejected:
		return "✋"
	case types.StateSettledWin:
		return "✅"
	case types.StateSettledLoss:
		return "❌"
	default:
		return "➖"
	}
}
