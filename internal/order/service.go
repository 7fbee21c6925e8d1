package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkins/storefront/internal/events"
	"github.com/nkins/storefront/internal/pricing"
)

// ListParams filters and pages the admin order listing. A zero Status means
// no status filter.
type ListParams struct {
	Status Status
	Page   int
	Limit  int
}

// Store is the persistence port for orders. Save must reject a duplicate
// transaction id with ErrDuplicateTransaction and return the order with its
// assigned id.
type Store interface {
	Save(ctx context.Context, o Order) (Order, error)
	FindByID(ctx context.Context, id string) (Order, error)
	FindByTransactionID(ctx context.Context, transactionID string) (Order, error)
	List(ctx context.Context, params ListParams) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, o Order) error
}

// Service coordinates order persistence with event emission.
type Service struct {
	Store  Store
	Events *events.Bus
	Logger zerolog.Logger
	Now    func() time.Time
}

// ServiceConfig wires the order service dependencies.
type ServiceConfig struct {
	Store  Store
	Events *events.Bus
	Logger zerolog.Logger
	Now    func() time.Time
}

// NewService validates and builds an order Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("order service: store is not configured")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{Store: cfg.Store, Events: cfg.Events, Logger: cfg.Logger, Now: now}, nil
}

// Create forms and persists a new pending order, then announces it on the
// event bus. Event delivery is best effort and never fails the checkout.
func (s *Service) Create(ctx context.Context, customer Customer, items []LineItem, shipping, tax pricing.Money, transactionID string) (Order, error) {
	formed, err := Form(customer, items, shipping, tax, transactionID, s.Now())
	if err != nil {
		return Order{}, err
	}

	existing, err := s.Store.FindByTransactionID(ctx, formed.TransactionID)
	if err == nil {
		return Order{}, fmt.Errorf("transaction %s already created order %s: %w", formed.TransactionID, existing.ID, ErrDuplicateTransaction)
	}
	if !errors.Is(err, ErrNotFound) {
		return Order{}, fmt.Errorf("check transaction: %w", err)
	}

	saved, err := s.Store.Save(ctx, formed)
	if err != nil {
		return Order{}, err
	}

	s.emit(ctx, events.TopicOrderCreated, saved.ID, map[string]any{
		"orderId": saved.ID,
		"email":   saved.Customer.Email,
		"total":   saved.Total,
		"status":  string(saved.Status),
	})
	return saved, nil
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.Store.FindByID(ctx, id)
}

// ByTransactionID returns the order created for a payment transaction.
func (s *Service) ByTransactionID(ctx context.Context, transactionID string) (Order, error) {
	return s.Store.FindByTransactionID(ctx, transactionID)
}

// List returns a page of orders, optionally filtered by status.
func (s *Service) List(ctx context.Context, params ListParams) ([]Order, int64, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, 0, fmt.Errorf("unknown status %q: %w", params.Status, ErrValidation)
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}
	return s.Store.List(ctx, params)
}

// UpdateStatus moves an order through the fulfilment pipeline. A reason is
// required when cancelling and recorded on the order.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status, reason string) (Order, error) {
	o, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := o.Transition(to, reason, s.Now()); err != nil {
		return Order{}, err
	}
	if err := s.Store.UpdateStatus(ctx, o); err != nil {
		return Order{}, err
	}

	topic := events.TopicOrderStatusChanged
	payload := map[string]any{
		"orderId": o.ID,
		"email":   o.Customer.Email,
		"status":  string(o.Status),
	}
	if to == StatusCancelled {
		topic = events.TopicOrderCanceled
		payload["reason"] = o.CancellationReason
	}
	s.emit(ctx, topic, o.ID, payload)
	return o, nil
}

// Cancel is a convenience wrapper for cancelling with a reason.
func (s *Service) Cancel(ctx context.Context, id, reason string) (Order, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled, reason)
}

func (s *Service) emit(ctx context.Context, topic, aggregateID string, payload map[string]any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Str("order_id", aggregateID).Msg("event emit failed")
	}
}
