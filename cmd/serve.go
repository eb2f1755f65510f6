package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mselser95/hoops-edge/internal/app"
	"github.com/mselser95/hoops-edge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API and event stream",
	Long: `Starts the HTTP server, which exposes:
1. /api/slate, /api/slate/analyze and /api/bets for the bet lifecycle
2. /api/bankroll for the current bankroll
3. /ws, a websocket stream of lifecycle events
4. /health, /ready and /metrics for operations

Bets created or settled by other hoops-edge commands against the same
store are picked up every LEDGER_REFRESH_INTERVAL (default 30s), and
immediately when an unknown bet ID is requested.

Runs until SIGINT or SIGTERM.`,
	Args: exactArgs(0),
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
