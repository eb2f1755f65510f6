package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/spf13/cobra"
)

// Exit codes returned by the CLI.
const (
	ExitOK                = 0
	ExitGeneric           = 1
	ExitInvalidInput      = 2
	ExitNotFound          = 3
	ExitAmbiguous         = 4
	ExitInvalidTransition = 5
	ExitAlreadySettled    = 6
)

//nolint:gochecknoglobals // Cobra boilerplate
var jsonOutput bool

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "hoops-edge",
	Short: "College basketball betting decision engine",
	Long: `hoops-edge evaluates a daily slate of college basketball games, picks
one side per market, and recommends fractional-Kelly stakes where the
estimated probability beats the price by the minimum expected value.

Recommendations become pending bets that you approve or reject, then settle
by hand or with auto-settle once final scores are posted. The bankroll is
rebuilt from settled bets on every start.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the running command; analyze-slate then returns the
// evaluations it already finished.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, types.ErrInvalidInput):
		return ExitInvalidInput
	case errors.Is(err, types.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, types.ErrAmbiguousIdentifier):
		return ExitAmbiguous
	case errors.Is(err, types.ErrAlreadySettled):
		return ExitAlreadySettled
	case errors.Is(err, types.ErrInvalidTransition):
		return ExitInvalidTransition
	}
	return ExitGeneric
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}
