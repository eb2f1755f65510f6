package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/hoops-edge/internal/edge"
	"github.com/mselser95/hoops-edge/internal/estimator"
	"github.com/mselser95/hoops-edge/internal/feed"
	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/internal/notify"
	"github.com/mselser95/hoops-edge/internal/settlement"
	"github.com/mselser95/hoops-edge/internal/slate"
	"github.com/mselser95/hoops-edge/internal/storage"
	"github.com/mselser95/hoops-edge/pkg/cache"
	"github.com/mselser95/hoops-edge/pkg/config"
	"github.com/mselser95/hoops-edge/pkg/healthprobe"
	"github.com/mselser95/hoops-edge/pkg/httpserver"
	"github.com/mselser95/hoops-edge/pkg/stream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// New creates a new application instance. The ledger is opened, and its
// bankroll replayed, before New returns.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: setupHealthChecker(),
		hub:           stream.NewHub(logger),
		now:           now,
		ctx:           ctx,
		cancel:        cancel,
	}

	err := a.setup(ctx, opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) setup(ctx context.Context, opts *Options) error {
	cfg, logger := a.cfg, a.logger

	// Setup cache
	estimateCache, err := setupCache(logger)
	if err != nil {
		return fmt.Errorf("setup cache: %w", err)
	}
	a.estimateCache = estimateCache

	a.redis = setupRedis(cfg)
	if a.redis != nil {
		client := a.redis
		a.healthChecker.AddCheck("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	// Setup feed
	a.feed = opts.Feed
	if a.feed == nil {
		a.feed, err = setupFeed(cfg, logger, a.redis, a.now)
		if err != nil {
			return fmt.Errorf("setup feed: %w", err)
		}
	}

	// Setup storage
	a.store = opts.Store
	if a.store == nil {
		a.store, err = setupStore(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("setup storage: %w", err)
		}
	}
	if pinger, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		a.healthChecker.AddCheck("store", pinger.Ping)
	}

	// Setup notifier
	a.notifier, err = setupNotifier(cfg, logger)
	if err != nil {
		return fmt.Errorf("setup notifier: %w", err)
	}

	// Setup ledger
	a.ledger, err = ledger.Open(ctx, ledger.Config{
		Store:            a.store,
		StartingBankroll: cfg.StartingBankroll,
		UnitValue:        cfg.UnitValue,
		Publisher:        a.publishers(),
		Logger:           logger,
		Now:              a.now,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	// Setup estimator and aggregator
	est := opts.Estimator
	if est == nil {
		est = setupEstimator(cfg, logger, a.estimateCache)
	}
	a.aggregator = setupAggregator(cfg, logger, est, a.ledger.Bankroll(), a.now)

	// Setup settler
	scores := opts.Scores
	if scores == nil {
		scores = settlement.NewScoreboardClient(cfg.ScoresURL, logger)
	}
	a.settler = settlement.NewSettler(scores, a.ledger, logger)

	a.httpServer = setupHTTPServer(cfg, logger, a.healthChecker, a, a.hub)

	return nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	cfg := cache.DefaultRistrettoConfig(logger)
	cfg.Prefix = "estimate"
	return cache.NewRistrettoCache(cfg)
}

func setupRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func setupFeed(cfg *config.Config, logger *zap.Logger, rdb *redis.Client, now func() time.Time) (feed.Feed, error) {
	var stats feed.StatsLookup
	if cfg.StatsFile != "" {
		book, err := feed.LoadStatsBook(cfg.StatsFile)
		if err != nil {
			return nil, fmt.Errorf("load team stats: %w", err)
		}
		logger.Info("team-stats-loaded",
			zap.String("path", cfg.StatsFile),
			zap.Int("teams", book.Len()))
		stats = book
	}

	switch cfg.FeedMode {
	case "file":
		return &feed.FileFeed{Path: cfg.FeedFile, Stats: stats, Logger: logger}, nil
	case "odds-api":
		client := feed.NewOddsAPIClient(feed.OddsAPIConfig{
			BaseURL:   cfg.OddsAPIURL,
			APIKey:    cfg.OddsAPIKey,
			Sport:     cfg.OddsSport,
			Bookmaker: cfg.OddsBookmaker,
			Stats:     stats,
			Logger:    logger,
		})
		if rdb == nil {
			return client, nil
		}
		return feed.NewSnapshotCache(client, feed.SnapshotConfig{
			Client:    rdb,
			Sport:     cfg.OddsSport,
			Bookmaker: cfg.OddsBookmaker,
			TTL:       cfg.FeedCacheTTL,
			Now:       now,
			Logger:    logger,
		}), nil
	default:
		return &feed.MockFeed{Now: now}, nil
	}
}

func setupStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ledger.Store, error) {
	switch cfg.StorageMode {
	case "postgres":
		pgStore, err := storage.NewPostgresStore(ctx, &storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStore, nil
	case "memory":
		logger.Warn("memory-storage-selected", zap.String("note", "bets are lost on exit"))
		return storage.NewMemoryStore(), nil
	default:
		sqliteStore, err := storage.NewSQLiteStore(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("create sqlite storage: %w", err)
		}
		return sqliteStore, nil
	}
}

func setupNotifier(cfg *config.Config, logger *zap.Logger) (*notify.Telegram, error) {
	if cfg.TelegramBotToken == "" {
		return nil, nil
	}
	return notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
}

func setupEstimator(cfg *config.Config, logger *zap.Logger, c cache.Cache) slate.Estimator {
	var est estimator.Estimator
	if cfg.EstimatorMode == "http" {
		est = estimator.NewHTTPClient(estimator.HTTPConfig{
			BaseURL:    cfg.EstimatorURL,
			APIKey:     cfg.EstimatorAPIKey,
			Timeout:    cfg.EstimateTimeout,
			MaxRetries: cfg.EstimatorRetries,
			Logger:     logger,
		})
	} else {
		est = estimator.NewBaseline()
	}
	return estimator.NewCached(est, c, cfg.EstimateCacheTTL, logger)
}

func setupAggregator(cfg *config.Config, logger *zap.Logger, est slate.Estimator, bankroll slate.UnitValuer, now func() time.Time) *slate.Aggregator {
	return slate.New(slate.Config{
		Estimator: est,
		Evaluator: edge.NewEvaluator(cfg.MinEV),
		Sizer: edge.NewSizer(edge.SizerConfig{
			KellyFraction:    cfg.KellyFraction,
			UnitsPerBankroll: cfg.UnitsPerBankroll,
			MinUnits:         cfg.MinUnits,
			MaxUnits:         cfg.MaxUnits,
		}),
		Bankroll:        bankroll,
		MinConfidence:   cfg.MinConfidence,
		Concurrency:     cfg.EvalConcurrency,
		EstimateTimeout: cfg.EstimateTimeout,
		Logger:          logger,
		Now:             now,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	api httpserver.API,
	hub *stream.Hub,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:           cfg.HTTPPort,
		Logger:         logger,
		HealthChecker:  healthChecker,
		API:            api,
		Stream:         hub,
		RequestTimeout: cfg.RunTimeout + 10*time.Second,
	})
}
