package app

import (
	"context"
	"sync"
	"time"

	"github.com/mselser95/hoops-edge/internal/feed"
	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/internal/notify"
	"github.com/mselser95/hoops-edge/internal/settlement"
	"github.com/mselser95/hoops-edge/internal/slate"
	"github.com/mselser95/hoops-edge/pkg/cache"
	"github.com/mselser95/hoops-edge/pkg/config"
	"github.com/mselser95/hoops-edge/pkg/healthprobe"
	"github.com/mselser95/hoops-edge/pkg/httpserver"
	"github.com/mselser95/hoops-edge/pkg/stream"
	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App is the main application orchestrator. CLI commands and the HTTP API
// both drive the engine through it.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	hub           *stream.Hub
	feed          feed.Feed
	aggregator    *slate.Aggregator
	ledger        *ledger.Manager
	store         ledger.Store
	settler       *settlement.Settler
	notifier      *notify.Telegram
	estimateCache cache.Cache
	redis         *redis.Client
	now           func() time.Time

	mu        sync.RWMutex
	lastSlate *types.DailySlate

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Options override components built from configuration. Tests use them to
// run the engine without network or disk.
type Options struct {
	Store     ledger.Store
	Feed      feed.Feed
	Estimator slate.Estimator
	Scores    settlement.ScoreSource
	Now       func() time.Time
}

var _ httpserver.API = (*App)(nil)
