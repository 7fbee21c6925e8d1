package order_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nkins/storefront/internal/events"
	"github.com/nkins/storefront/internal/order"
)

type memStore struct {
	orders map[string]order.Order
	byTxn  map[string]string
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]order.Order{}, byTxn: map[string]string{}}
}

func (m *memStore) Save(_ context.Context, o order.Order) (order.Order, error) {
	if _, exists := m.byTxn[o.TransactionID]; exists {
		return order.Order{}, fmt.Errorf("transaction %s: %w", o.TransactionID, order.ErrDuplicateTransaction)
	}
	o.ID = uuid.NewString()
	m.orders[o.ID] = o
	m.byTxn[o.TransactionID] = o.ID
	return o, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (m *memStore) FindByTransactionID(_ context.Context, txn string) (order.Order, error) {
	id, ok := m.byTxn[txn]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return m.orders[id], nil
}

func (m *memStore) List(_ context.Context, params order.ListParams) ([]order.Order, int64, error) {
	all := make([]order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if params.Status != "" && o.Status != params.Status {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	start := (params.Page - 1) * params.Limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memStore) UpdateStatus(_ context.Context, o order.Order) error {
	if _, ok := m.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	m.orders[o.ID] = o
	return nil
}

type capture struct {
	events []events.Event
}

func (c *capture) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

func newTestService(t *testing.T) (*order.Service, *memStore, *capture) {
	t.Helper()
	store := newMemStore()
	sink := &capture{}
	svc, err := order.NewService(order.ServiceConfig{
		Store:  store,
		Events: &events.Bus{Notifiers: []events.Notifier{sink}},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, store, sink
}

func TestCreatePersistsAndEmits(t *testing.T) {
	svc, _, sink := newTestService(t)

	o, err := svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(2)}, 3000, 0, "txn-100")
	require.NoError(t, err)
	require.NotEmpty(t, o.ID)
	require.Equal(t, int64(38000), o.Total)

	require.Len(t, sink.events, 1)
	require.Equal(t, events.TopicOrderCreated, sink.events[0].Topic)
	require.Equal(t, o.ID, sink.events[0].AggregateID)
}

func TestCreateRejectsDuplicateTransaction(t *testing.T) {
	svc, _, sink := newTestService(t)

	_, err := svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(1)}, 0, 0, "txn-dup")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(3)}, 0, 0, "txn-dup")
	require.ErrorIs(t, err, order.ErrDuplicateTransaction)
	require.Len(t, sink.events, 1)
}

func TestUpdateStatusWalksPipeline(t *testing.T) {
	svc, _, sink := newTestService(t)
	created, err := svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(1)}, 0, 0, "txn-200")
	require.NoError(t, err)

	for _, next := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		updated, err := svc.UpdateStatus(context.Background(), created.ID, next, "")
		require.NoError(t, err)
		require.Equal(t, next, updated.Status)
	}

	// order.created plus three status changes
	require.Len(t, sink.events, 4)
	require.Equal(t, events.TopicOrderStatusChanged, sink.events[3].Topic)

	_, err = svc.UpdateStatus(context.Background(), created.ID, order.StatusCancelled, "too late")
	require.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestUpdateStatusRejectsSkip(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(1)}, 0, 0, "txn-300")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), created.ID, order.StatusShipped, "")
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusPending, got.Status)
}

func TestCancelEmitsReason(t *testing.T) {
	svc, _, sink := newTestService(t)
	created, err := svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(1)}, 0, 0, "txn-400")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), created.ID, "out of stock")
	require.NoError(t, err)
	require.Equal(t, order.StatusCancelled, cancelled.Status)
	require.Equal(t, "out of stock", cancelled.CancellationReason)

	require.Len(t, sink.events, 2)
	require.Equal(t, events.TopicOrderCanceled, sink.events[1].Topic)
	require.Contains(t, string(sink.events[1].Payload), "out of stock")
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	first, err := svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(1)}, 0, 0, "txn-500")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validCustomer(), []order.LineItem{scarfItem(2)}, 0, 0, "txn-501")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), first.ID, order.StatusProcessing, "")
	require.NoError(t, err)

	orders, total, err := svc.List(context.Background(), order.ListParams{Status: order.StatusProcessing})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	require.Equal(t, first.ID, orders[0].ID)

	_, _, err = svc.List(context.Background(), order.ListParams{Status: order.Status("refunded")})
	require.ErrorIs(t, err, order.ErrValidation)
}
