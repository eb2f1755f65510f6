package cmd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/mselser95/hoops-edge/internal/app"
	"github.com/mselser95/hoops-edge/internal/storage"
	"github.com/mselser95/hoops-edge/pkg/config"
	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session bundles what a one-shot command needs.
type session struct {
	app      *app.App
	logger   *zap.Logger
	reporter *storage.ConsoleReporter
}

func (s *session) close() {
	err := s.app.Close()
	if err != nil {
		s.logger.Warn("app-close-error", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// openSession loads .env and configuration, then builds the app.
func openSession(cmd *cobra.Command) (*session, error) {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	application, err := app.New(cfg, logger, nil)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create app: %w", err)
	}

	return &session{
		app:      application,
		logger:   logger,
		reporter: storage.NewConsoleReporter(cmd.OutOrStdout(), logger),
	}, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// exactArgs is cobra.ExactArgs with an invalid-input error so a bad
// invocation exits with the right code.
func exactArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == n {
			return nil
		}
		if n == 0 {
			return fmt.Errorf("%w: %s takes no arguments, got %q", types.ErrInvalidInput, cmd.Name(), args)
		}
		return fmt.Errorf("%w: expected %s, got %d argument(s)",
			types.ErrInvalidInput, strings.Join(names, " "), len(args))
	}
}
