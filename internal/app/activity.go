/**
 * @description
 * Activity-feed publishing seam for the application services. Events are
 * best-effort side effects: a broker failure is logged and swallowed so it
 * never blocks or fails the primary mutation.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/nutrivibes/engagement-service/internal/domain"
)

// ActivityPublisher publishes activity events for the dietician's feed.
// pkg/rabbitmq provides the AMQP implementation and a no-op fallback.
type ActivityPublisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
}

func publishActivity(ctx context.Context, events ActivityPublisher, logger *slog.Logger, event domain.ActivityEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event.Type, event); err != nil {
		logger.Warn("failed to publish activity event", "type", event.Type, "client_id", event.ClientID, "error", err)
	}
}
