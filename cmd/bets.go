package cmd

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listBetsCmd = &cobra.Command{
	Use:   "list-bets",
	Short: "List recorded bets",
	Long: `Lists bets ordered by creation time. Use --state to show only bets in one
state: pending, approved, rejected, settled_win, settled_loss or
settled_push.`,
	Args: exactArgs(0),
	RunE: runListBets,
}

//nolint:gochecknoglobals // Cobra boilerplate
var approveCmd = &cobra.Command{
	Use:   "approve ID",
	Short: "Approve a pending bet",
	Long:  `Approves a pending bet. ID may be the full identifier or any unique prefix.`,
	Args:  exactArgs(1, "ID"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], "approve")
	},
}

//nolint:gochecknoglobals // Cobra boilerplate
var rejectCmd = &cobra.Command{
	Use:   "reject ID",
	Short: "Reject a pending bet",
	Long:  `Rejects a pending bet. ID may be the full identifier or any unique prefix.`,
	Args:  exactArgs(1, "ID"),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], "reject")
	},
}

//nolint:gochecknoglobals // Cobra boilerplate
var settleCmd = &cobra.Command{
	Use:   "settle ID OUTCOME UNITS",
	Short: "Settle an approved bet",
	Long: `Settles an approved bet as win, loss or push and books UNITS against the
bankroll. A win realizes a non-negative amount, a loss a non-positive one,
and a push exactly zero.

Negative amounts must follow "--" so they are not read as flags.`,
	Example: `  hoops-edge settle 3f2a win 1.82
  hoops-edge settle 3f2a loss -- -2.0
  hoops-edge settle 3f2a push 0`,
	Args: exactArgs(3, "ID", "OUTCOME", "UNITS"),
	RunE: runSettle,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listBetsCmd, approveCmd, rejectCmd, settleCmd)
	listBetsCmd.Flags().StringP("state", "s", "", "Only list bets in this state")
}

func runListBets(cmd *cobra.Command, args []string) error {
	state, _ := cmd.Flags().GetString("state")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	bets, err := s.app.ListBets(cmd.Context(), types.BetState(state))
	if err != nil {
		return fmt.Errorf("list bets: %w", err)
	}

	if jsonOutput {
		if bets == nil {
			bets = []*types.BetRecord{}
		}
		return printJSON(cmd, bets)
	}
	s.reporter.PrintBets(bets)
	return nil
}

func runTransition(cmd *cobra.Command, ref, op string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var fn func(context.Context, string) (*types.BetRecord, error)
	switch op {
	case "approve":
		fn = s.app.Approve
	default:
		fn = s.app.Reject
	}

	bet, err := fn(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("%s bet: %w", op, err)
	}

	if jsonOutput {
		return printJSON(cmd, bet)
	}
	s.reporter.PrintBet(bet)
	return nil
}

func runSettle(cmd *cobra.Command, args []string) error {
	outcome, err := types.ParseOutcome(args[1])
	if err != nil {
		return err
	}
	units, err := strconv.ParseFloat(args[2], 64)
	if err != nil || math.IsNaN(units) || math.IsInf(units, 0) {
		return fmt.Errorf("%w: UNITS must be a number, got %q", types.ErrInvalidInput, args[2])
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	bet, err := s.app.Settle(cmd.Context(), args[0], outcome, units)
	if err != nil {
		return fmt.Errorf("settle bet: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, bet)
	}
	s.reporter.PrintBet(bet)
	s.reporter.PrintBankroll(s.app.Bankroll())
	return nil
}
