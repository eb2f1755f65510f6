package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var bankrollCmd = &cobra.Command{
	Use:     "bankroll",
	Aliases: []string{"show-bankroll"},
	Short:   "Show the bankroll",
	Long: `Shows the starting bankroll, the current balance, realized units and
profit, the win-loss-push record and ROI on settled stakes.`,
	Args: exactArgs(0),
	RunE: runBankroll,
}

//nolint:gochecknoglobals // Cobra boilerplate
var autoSettleCmd = &cobra.Command{
	Use:   "auto-settle",
	Short: "Settle approved bets from final scores",
	Long: `Fetches completed games from the scoreboard, matches them to approved
bets by team name, grades each bet as win, loss or push, and settles it.
Bets whose game has not finished or cannot be matched stay approved.`,
	Args: exactArgs(0),
	RunE: runAutoSettle,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(bankrollCmd, autoSettleCmd)
}

func runBankroll(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	state := s.app.Bankroll()
	if jsonOutput {
		return printJSON(cmd, state)
	}
	s.reporter.PrintBankroll(state)
	return nil
}

func runAutoSettle(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	summary, err := s.app.AutoSettle(cmd.Context())
	if err != nil {
		return fmt.Errorf("auto-settle: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, summary)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checked %d approved bet(s): %d won, %d lost, %d pushed, %d unmatched, %d failed\n",
		summary.Checked, summary.Wins, summary.Losses, summary.Pushes, summary.Unmatched, summary.Failed)
	if len(summary.Settled) > 0 {
		s.reporter.PrintBets(summary.Settled)
		s.reporter.PrintBankroll(s.app.Bankroll())
	}
	return nil
}
