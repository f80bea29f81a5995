package background

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredAttemptDeleter removes attempt rows past their retention time.
type ExpiredAttemptDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically removes expired login attempts. Retention is
// always at least the longest detection window, so the engine never loses
// rows it still needs.
type CleanupManager struct {
	attemptRepo ExpiredAttemptDeleter
	logger      *slog.Logger
	interval    time.Duration
	stopCh      chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(attemptRepo ExpiredAttemptDeleter, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		attemptRepo: attemptRepo,
		logger:      logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.attemptRepo.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to delete expired attempts", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("expired attempt cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
