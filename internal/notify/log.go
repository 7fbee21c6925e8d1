package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nkins/storefront/internal/events"
)

// LogNotifier records every emitted event in the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements the events.Notifier interface.
func (n LogNotifier) Notify(_ context.Context, event events.Event) error {
	n.Logger.Info().
		Str("event_id", event.ID.String()).
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", event.Payload).
		Time("occurred_at", event.OccurredAt).
		Msg("domain_event")
	return nil
}
