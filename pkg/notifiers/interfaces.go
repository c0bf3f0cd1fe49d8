package notifiers

import (
	"context"

	"github.com/readstack-hq/pocket2notion/internal/logger"
)

// Notifier delivers import lifecycle events to a downstream sink
// (HTTP webhook, SQS, SNS, Pub/Sub).
type Notifier interface {
	ID() string
	Type() string
	Send(ctx context.Context, evt Event) error
}

func ensureLogger(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
