package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:         "8080",
		StartingBankroll: 1000,
		UnitValue:        10,
		KellyFraction:    0.25,
		MinEV:            0.035,
		MinUnits:         0.05,
		MaxUnits:         3,
		UnitsPerBankroll: 100,
		MaxGames:         5,
		EvalConcurrency:  4,
		EstimatorMode:    "baseline",
		FeedMode:         "mock",
		StorageMode:      "sqlite",
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"KELLY_FRACTION", "MIN_EV", "MAX_GAMES", "FEED_MODE", "STORAGE_MODE",
		"ESTIMATOR_MODE", "ESTIMATE_TIMEOUT", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.KellyFraction)
	assert.Equal(t, 0.035, cfg.MinEV)
	assert.Equal(t, 0.05, cfg.MinUnits)
	assert.Equal(t, 3.0, cfg.MaxUnits)
	assert.Equal(t, 100.0, cfg.UnitsPerBankroll)
	assert.Equal(t, 5, cfg.MaxGames)
	assert.Equal(t, 45*time.Second, cfg.EstimateTimeout)
	assert.Equal(t, "mock", cfg.FeedMode)
	assert.Equal(t, "sqlite", cfg.StorageMode)
	assert.Equal(t, "baseline", cfg.EstimatorMode)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("MIN_EV", "0.05")
	t.Setenv("MAX_GAMES", "8")
	t.Setenv("ESTIMATE_TIMEOUT", "10s")
	t.Setenv("STORAGE_MODE", "memory")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.MinEV)
	assert.Equal(t, 8, cfg.MaxGames)
	assert.Equal(t, 10*time.Second, cfg.EstimateTimeout)
	assert.Equal(t, "memory", cfg.StorageMode)
}

func TestLoadFromEnv_MalformedFallsBack(t *testing.T) {
	t.Setenv("MAX_GAMES", "many")
	t.Setenv("MIN_EV", "high")
	t.Setenv("RUN_TIMEOUT", "soon")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxGames)
	assert.Equal(t, 0.035, cfg.MinEV)
	assert.Equal(t, 3*time.Minute, cfg.RunTimeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: "HTTP_PORT"},
		{name: "zero-bankroll", mutate: func(c *Config) { c.StartingBankroll = 0 }, wantErr: "STARTING_BANKROLL"},
		{name: "zero-unit", mutate: func(c *Config) { c.UnitValue = 0 }, wantErr: "UNIT_VALUE"},
		{name: "kelly-zero", mutate: func(c *Config) { c.KellyFraction = 0 }, wantErr: "KELLY_FRACTION"},
		{name: "kelly-above-one", mutate: func(c *Config) { c.KellyFraction = 1.5 }, wantErr: "KELLY_FRACTION"},
		{name: "kelly-full", mutate: func(c *Config) { c.KellyFraction = 1 }},
		{name: "negative-ev", mutate: func(c *Config) { c.MinEV = -0.01 }, wantErr: "MIN_EV"},
		{name: "units-inverted", mutate: func(c *Config) { c.MinUnits = 5 }, wantErr: "MIN_UNITS"},
		{name: "confidence-range", mutate: func(c *Config) { c.MinConfidence = 2 }, wantErr: "MIN_CONFIDENCE"},
		{name: "max-games", mutate: func(c *Config) { c.MaxGames = 0 }, wantErr: "MAX_GAMES"},
		{name: "concurrency", mutate: func(c *Config) { c.EvalConcurrency = 0 }, wantErr: "EVAL_CONCURRENCY"},
		{name: "http-estimator-needs-url", mutate: func(c *Config) { c.EstimatorMode = "http" }, wantErr: "ESTIMATOR_URL"},
		{name: "unknown-estimator", mutate: func(c *Config) { c.EstimatorMode = "oracle" }, wantErr: "ESTIMATOR_MODE"},
		{name: "file-feed-needs-path", mutate: func(c *Config) { c.FeedMode = "file" }, wantErr: "FEED_FILE"},
		{name: "odds-api-needs-key", mutate: func(c *Config) { c.FeedMode = "odds-api" }, wantErr: "ODDS_API_KEY"},
		{name: "unknown-feed", mutate: func(c *Config) { c.FeedMode = "rss" }, wantErr: "FEED_MODE"},
		{name: "unknown-storage", mutate: func(c *Config) { c.StorageMode = "console" }, wantErr: "STORAGE_MODE"},
		{name: "telegram-half-set", mutate: func(c *Config) { c.TelegramBotToken = "x" }, wantErr: "TELEGRAM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)
}
