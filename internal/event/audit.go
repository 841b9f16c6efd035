package event

import (
	"context"
	"log/slog"

	"go-message-board/internal/metrics"
)

// StartAuditLog drains auth events into the structured log and the
// auth_events_total counter. It subscribes before returning, so no event
// published afterwards is missed. The returned channel closes once
// ctx is cancelled and the drain has stopped.
func StartAuditLog(ctx context.Context, bus Bus, logger *slog.Logger) <-chan struct{} {
	events, unsubscribe := bus.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer unsubscribe()
		drainAudit(ctx, events, logger)
	}()

	return done
}

func drainAudit(ctx context.Context, events <-chan Event, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			metrics.AuthEventsTotal.WithLabelValues(string(e.Type)).Inc()

			attrs := []any{"event_id", e.ID, "type", string(e.Type)}
			if e.ActorID != "" {
				attrs = append(attrs, "actor_id", e.ActorID)
			}
			if e.Email != "" {
				attrs = append(attrs, "email", e.Email)
			}
			if e.Reason != "" {
				attrs = append(attrs, "reason", e.Reason)
			}

			switch e.Type {
			case TypeLoginFailed, TypeRefreshRejected, TypeAccessDenied:
				logger.Warn("auth event", attrs...)
			default:
				logger.Info("auth event", attrs...)
			}
		}
	}
}
