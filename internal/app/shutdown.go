package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// notifyDrainTimeout bounds how long Close waits for pending notifications.
const notifyDrainTimeout = 15 * time.Second

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	err = a.Close()
	if err != nil {
		a.logger.Error("application-close-error", zap.Error(err))
	}

	a.logger.Info("application-shutdown-complete")

	return nil
}

// Close releases the stream hub, caches and storage. One-shot CLI commands
// call it directly; Shutdown calls it after the server stops. It is safe to
// call more than once.
func (a *App) Close() error {
	var storeErr error
	a.closeOnce.Do(func() {
		a.cancel()

		// Settlement notifications are sent asynchronously; a one-shot
		// settle command would otherwise exit before they go out.
		if a.notifier != nil {
			drainCtx, drainCancel := context.WithTimeout(context.Background(), notifyDrainTimeout)
			_ = a.notifier.Wait(drainCtx)
			drainCancel()
		}

		if a.hub != nil {
			a.hub.Close()
		}

		if a.estimateCache != nil {
			a.estimateCache.Close()
		}

		if a.redis != nil {
			err := a.redis.Close()
			if err != nil {
				a.logger.Warn("redis-close-error", zap.Error(err))
			}
		}

		if a.store != nil {
			storeErr = a.store.Close()
		}
	})
	return storeErr
}
