package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Stop enqueuing before stopping the worker so shutdown drains rather
	// than grows the backlog
	a.scheduler.Stop()

	err := a.jobQueue.Close()
	if err != nil {
		a.logger.Error("queue-close-error", zap.Error(err))
	}

	// Cancel context to signal all components
	a.cancel()

	err = a.worker.Close()
	if err != nil {
		a.logger.Error("worker-close-error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err = a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	err = a.store.Close()
	if err != nil {
		a.logger.Error("cache-close-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}
