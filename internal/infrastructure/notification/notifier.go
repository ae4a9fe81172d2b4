package notification

import (
	"context"

	"github.com/kpiboard/backend/internal/domain/review"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log. It stands in for a
// real mail gateway; deployments wire their own Notifier implementation.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// Notify logs the notification at info level
func (n *LogNotifier) Notify(ctx context.Context, notification review.Notification) error {
	n.logger.Info("notification",
		zap.String("kind", string(notification.Kind)),
		zap.String("recipient", notification.Recipient.String()),
		zap.Any("context", notification.Context),
	)
	return nil
}

var _ review.Notifier = (*LogNotifier)(nil)
