package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/service"
)

// Refresher reloads the ticket snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartSnapshotRefresher refreshes the snapshot every interval until ctx is
// done. The returned channel closes once the loop has stopped. A
// non-positive interval starts nothing.
func StartSnapshotRefresher(ctx context.Context, refresher Refresher, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if refresher == nil || interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := refresher.Refresh(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("snapshot refresh failed", zap.Error(err))
				}
			}
		}
	}()
	return done
}
