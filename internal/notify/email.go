package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nkins/storefront/internal/common"
	"github.com/nkins/storefront/internal/events"
)

// EmailNotifier sends transactional emails for selected topics. Order
// creation notifies the seller address; delivery is best effort.
type EmailNotifier struct {
	Mail          common.EmailSender
	Enabled       bool
	SellerAddress string
	TopicToggles  map[string]bool
}

// Notify implements the events.Notifier interface.
func (n EmailNotifier) Notify(_ context.Context, event events.Event) error {
	if !n.Enabled || n.Mail == nil {
		return nil
	}
	if n.TopicToggles != nil {
		if enabled, ok := n.TopicToggles[event.Topic]; ok && !enabled {
			return nil
		}
	}
	payload := map[string]any{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("email notify: decode payload: %w", err)
		}
	}
	to := strings.TrimSpace(n.SellerAddress)
	if to == "" {
		to = extractRecipient(payload)
	}
	if to == "" {
		return nil
	}
	return n.Mail.Send(to, subjectFor(event.Topic), bodyFor(event.Topic, payload, event.OccurredAt))
}

func extractRecipient(payload map[string]any) string {
	keys := []string{"email", "recipient", "customerEmail"}
	for _, key := range keys {
		if val, ok := payload[key]; ok {
			if s, ok := val.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func subjectFor(topic string) string {
	switch topic {
	case events.TopicOrderCreated:
		return "New order received"
	case events.TopicOrderStatusChanged:
		return "Order status updated"
	case events.TopicOrderCanceled:
		return "Order cancelled"
	default:
		return fmt.Sprintf("Notification %s", topic)
	}
}

func bodyFor(topic string, payload map[string]any, occurred time.Time) string {
	summary := fmt.Sprintf("Event %s occurred at %s.", topic, occurred.Format(time.RFC3339))
	if orderID, ok := payload["orderId"].(string); ok && orderID != "" {
		summary += fmt.Sprintf("\nOrder ID: %s", orderID)
	}
	if status, ok := payload["status"].(string); ok && status != "" {
		summary += fmt.Sprintf("\nStatus: %s", status)
	}
	if reason, ok := payload["reason"].(string); ok && reason != "" {
		summary += "\nReason: " + reason
	}
	return summary
}
