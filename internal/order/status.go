package order

import (
	"fmt"
	"strings"
	"time"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// fulfilment order of the forward pipeline; cancelled sits outside it.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseStatus normalizes and validates a status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q: %w", raw, ErrValidation)
	}
	return s, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from -> to is a legal status change.
// Forward moves must advance exactly one step in the fulfilment pipeline;
// cancellation is allowed from any non-terminal state.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if to == StatusCancelled {
		return !from.Terminal()
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	return statusRank[to] == fromRank+1
}

// Transition applies a status change to the order. Cancelling requires a
// non-empty reason, which is recorded on the order.
func (o *Order) Transition(to Status, reason string, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%s -> %s: %w", o.Status, to, ErrInvalidTransition)
	}
	if to == StatusCancelled {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return fmt.Errorf("cancellation reason is required: %w", ErrValidation)
		}
		o.CancellationReason = reason
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}
