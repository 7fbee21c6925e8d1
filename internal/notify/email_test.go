package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkins/storefront/internal/common"
	"github.com/nkins/storefront/internal/events"
	"github.com/nkins/storefront/internal/notify"
)

func orderCreatedEvent(t *testing.T) events.Event {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"orderId": "ord-1", "total": 38000})
	require.NoError(t, err)
	return events.Event{
		ID:          uuid.New(),
		Topic:       events.TopicOrderCreated,
		AggregateID: "ord-1",
		Payload:     payload,
		OccurredAt:  time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestEmailNotifierSendsToSeller(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	n := notify.EmailNotifier{Mail: outbox, Enabled: true, SellerAddress: "orders@nkins.example"}

	require.NoError(t, n.Notify(context.Background(), orderCreatedEvent(t)))
	require.Len(t, outbox.Outbox, 1)
	require.Equal(t, "orders@nkins.example", outbox.Outbox[0].To)
	require.Equal(t, "New order received", outbox.Outbox[0].Subject)
	require.Contains(t, outbox.Outbox[0].HTML, "ord-1")
}

func TestEmailNotifierDisabled(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	n := notify.EmailNotifier{Mail: outbox, Enabled: false, SellerAddress: "orders@nkins.example"}
	require.NoError(t, n.Notify(context.Background(), orderCreatedEvent(t)))
	require.Empty(t, outbox.Outbox)
}

func TestEmailNotifierTopicToggle(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	n := notify.EmailNotifier{
		Mail:          outbox,
		Enabled:       true,
		SellerAddress: "orders@nkins.example",
		TopicToggles:  map[string]bool{events.TopicOrderCreated: false},
	}
	require.NoError(t, n.Notify(context.Background(), orderCreatedEvent(t)))
	require.Empty(t, outbox.Outbox)
}

func TestEmailNotifierFallsBackToPayloadRecipient(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	n := notify.EmailNotifier{Mail: outbox, Enabled: true}

	ev := orderCreatedEvent(t)
	payload, err := json.Marshal(map[string]any{"orderId": "ord-1", "email": "buyer@example.com"})
	require.NoError(t, err)
	ev.Payload = payload

	require.NoError(t, n.Notify(context.Background(), ev))
	require.Len(t, outbox.Outbox, 1)
	require.Equal(t, "buyer@example.com", outbox.Outbox[0].To)
}
