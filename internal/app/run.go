package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the HTTP server and blocks until a shutdown signal arrives.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("feed-mode", a.cfg.FeedMode),
		zap.String("estimator-mode", a.cfg.EstimatorMode),
		zap.String("storage-mode", a.cfg.StorageMode),
		zap.String("log-level", a.cfg.LogLevel))

	a.startComponents()

	// Mark as ready
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort))

	// Wait for shutdown signal
	return a.waitForShutdown()
}

func (a *App) startComponents() {
	a.wg.Add(1)
	go a.runHTTPServer()

	if a.cfg.LedgerRefresh > 0 {
		a.wg.Add(1)
		go a.runLedgerRefresh(a.cfg.LedgerRefresh)
	}

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
		a.cancel()
	}
}

// runLedgerRefresh keeps the ledger in step with bets that one-shot CLI
// commands write to the shared store.
func (a *App) runLedgerRefresh(interval time.Duration) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			err := a.ledger.Refresh(a.ctx)
			if err != nil && a.ctx.Err() == nil {
				a.logger.Warn("ledger-refresh-failed", zap.Error(err))
			}
		}
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
