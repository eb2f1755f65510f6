package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel  string
	LogFormat string
	HTTPPort  string

	// Bankroll
	StartingBankroll float64
	UnitValue        float64

	// Decision thresholds and sizing
	KellyFraction    float64
	MinEV            float64
	MinUnits         float64
	MaxUnits         float64
	UnitsPerBankroll float64
	MinConfidence    float64

	// Aggregation
	MaxGames        int
	EvalConcurrency int
	EstimateTimeout time.Duration
	RunTimeout      time.Duration

	// Estimator
	EstimatorMode    string // "baseline" or "http"
	EstimatorURL     string
	EstimatorAPIKey  string
	EstimatorRetries int
	EstimateCacheTTL time.Duration

	// Feed
	FeedMode      string // "mock", "file" or "odds-api"
	FeedFile      string
	StatsFile     string
	OddsAPIURL    string
	OddsAPIKey    string
	OddsSport     string
	OddsBookmaker string

	// Redis snapshot cache, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	FeedCacheTTL  time.Duration

	// Storage
	StorageMode  string // "sqlite", "postgres" or "memory"
	SQLitePath   string
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// LedgerRefresh is how often serve reloads bets written by other
	// processes. Zero disables the loop.
	LedgerRefresh time.Duration

	// Settlement
	ScoresURL string

	// Notifications, disabled when the token is empty
	TelegramBotToken string
	TelegramChatID   string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		HTTPPort:  getEnvOrDefault("HTTP_PORT", "8080"),

		// Bankroll defaults
		StartingBankroll: getFloat64OrDefault("STARTING_BANKROLL", 1000.0),
		UnitValue:        getFloat64OrDefault("UNIT_VALUE", 10.0),

		// Decision defaults
		KellyFraction:    getFloat64OrDefault("KELLY_FRACTION", 0.25),
		MinEV:            getFloat64OrDefault("MIN_EV", 0.035),
		MinUnits:         getFloat64OrDefault("MIN_UNITS", 0.05),
		MaxUnits:         getFloat64OrDefault("MAX_UNITS", 3.0),
		UnitsPerBankroll: getFloat64OrDefault("UNITS_PER_BANKROLL", 100.0),
		MinConfidence:    getFloat64OrDefault("MIN_CONFIDENCE", 0.0),

		// Aggregation defaults
		MaxGames:        getIntOrDefault("MAX_GAMES", 5),
		EvalConcurrency: getIntOrDefault("EVAL_CONCURRENCY", 4),
		EstimateTimeout: getDurationOrDefault("ESTIMATE_TIMEOUT", 45*time.Second),
		RunTimeout:      getDurationOrDefault("RUN_TIMEOUT", 3*time.Minute),

		// Estimator defaults
		EstimatorMode:    getEnvOrDefault("ESTIMATOR_MODE", "baseline"),
		EstimatorURL:     os.Getenv("ESTIMATOR_URL"),
		EstimatorAPIKey:  os.Getenv("ESTIMATOR_API_KEY"),
		EstimatorRetries: getIntOrDefault("ESTIMATOR_RETRIES", 2),
		EstimateCacheTTL: getDurationOrDefault("ESTIMATE_CACHE_TTL", 30*time.Minute),

		// Feed defaults
		FeedMode:      getEnvOrDefault("FEED_MODE", "mock"),
		FeedFile:      os.Getenv("FEED_FILE"),
		StatsFile:     os.Getenv("STATS_FILE"),
		OddsAPIURL:    getEnvOrDefault("ODDS_API_URL", "https://api.the-odds-api.com/v4"),
		OddsAPIKey:    os.Getenv("ODDS_API_KEY"),
		OddsSport:     getEnvOrDefault("ODDS_SPORT", "basketball_ncaab"),
		OddsBookmaker: getEnvOrDefault("ODDS_BOOKMAKER", "fanduel"),

		// Redis defaults
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),
		FeedCacheTTL:  getDurationOrDefault("FEED_CACHE_TTL", 15*time.Minute),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "sqlite"),
		SQLitePath:   getEnvOrDefault("SQLITE_PATH", "data/hoops_edge.db"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "hoops"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "hoops"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "hoops_edge"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		LedgerRefresh: getDurationOrDefault("LEDGER_REFRESH_INTERVAL", 30*time.Second),

		// Settlement defaults
		ScoresURL: getEnvOrDefault("SCORES_URL",
			"https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball/scoreboard"),

		// Notifications
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.StartingBankroll <= 0 {
		return fmt.Errorf("STARTING_BANKROLL must be positive, got %f", c.StartingBankroll)
	}

	if c.UnitValue <= 0 {
		return fmt.Errorf("UNIT_VALUE must be positive, got %f", c.UnitValue)
	}

	if c.KellyFraction <= 0 || c.KellyFraction > 1.0 {
		return fmt.Errorf("KELLY_FRACTION must be in (0, 1], got %f", c.KellyFraction)
	}

	if c.MinEV < 0 {
		return fmt.Errorf("MIN_EV cannot be negative, got %f", c.MinEV)
	}

	if c.MinUnits < 0 || c.MaxUnits <= 0 || c.MinUnits > c.MaxUnits {
		return fmt.Errorf("unit bounds must satisfy 0 <= MIN_UNITS <= MAX_UNITS, got %f and %f", c.MinUnits, c.MaxUnits)
	}

	if c.UnitsPerBankroll <= 0 {
		return fmt.Errorf("UNITS_PER_BANKROLL must be positive, got %f", c.UnitsPerBankroll)
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("MIN_CONFIDENCE must be in [0, 1], got %f", c.MinConfidence)
	}

	if c.MaxGames <= 0 {
		return fmt.Errorf("MAX_GAMES must be positive, got %d", c.MaxGames)
	}

	if c.EvalConcurrency <= 0 {
		return fmt.Errorf("EVAL_CONCURRENCY must be positive, got %d", c.EvalConcurrency)
	}

	switch c.EstimatorMode {
	case "baseline":
	case "http":
		if c.EstimatorURL == "" {
			return fmt.Errorf("ESTIMATOR_URL is required when ESTIMATOR_MODE is 'http'")
		}
	default:
		return fmt.Errorf("ESTIMATOR_MODE must be 'baseline' or 'http', got %q", c.EstimatorMode)
	}

	switch c.FeedMode {
	case "mock":
	case "file":
		if c.FeedFile == "" {
			return fmt.Errorf("FEED_FILE is required when FEED_MODE is 'file'")
		}
	case "odds-api":
		if c.OddsAPIKey == "" {
			return fmt.Errorf("ODDS_API_KEY is required when FEED_MODE is 'odds-api'")
		}
	default:
		return fmt.Errorf("FEED_MODE must be 'mock', 'file' or 'odds-api', got %q", c.FeedMode)
	}

	if c.StorageMode != "sqlite" && c.StorageMode != "postgres" && c.StorageMode != "memory" {
		return fmt.Errorf("STORAGE_MODE must be 'sqlite', 'postgres' or 'memory', got %q", c.StorageMode)
	}

	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
