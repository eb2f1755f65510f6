package cmd

import (
	"fmt"

	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCmd = &cobra.Command{
	Use:   "analyze-slate",
	Short: "Evaluate today's slate and record recommended bets",
	Long: `Fetches today's games from the configured feed, ranks them, and evaluates
one side of each spread, total and moneyline market. Recommendations that
clear the EV threshold and the unit floor are recorded as pending bets.

Use --dry-run to print the slate without recording anything.`,
	Args: exactArgs(0),
	RunE: runAnalyze,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntP("max-games", "n", 0, "Maximum games to analyze (0 uses MAX_GAMES)")
	analyzeCmd.Flags().Bool("dry-run", false, "Evaluate without recording bets")
}

type analyzeOutput struct {
	Slate   *types.DailySlate  `json:"slate"`
	Created []*types.BetRecord `json:"created"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	maxGames, _ := cmd.Flags().GetInt("max-games")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if maxGames < 0 {
		return fmt.Errorf("%w: --max-games must not be negative", types.ErrInvalidInput)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	slate, created, err := s.app.AnalyzeSlate(cmd.Context(), maxGames, dryRun)
	if err != nil {
		return fmt.Errorf("analyze slate: %w", err)
	}

	if jsonOutput {
		if created == nil {
			created = []*types.BetRecord{}
		}
		return printJSON(cmd, analyzeOutput{Slate: slate, Created: created})
	}

	s.reporter.PrintSlate(slate)
	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run, no bets recorded.")
		return nil
	}
	if len(created) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d pending bet(s):\n", len(created))
		s.reporter.PrintBets(created)
	}
	return nil
}
