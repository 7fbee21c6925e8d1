package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkins/storefront/internal/order"
)

// OrderStore persists orders in Postgres. The header row and its line items
// are written in one transaction, and the unique transaction_id constraint
// backs the duplicate-payment guard.
type OrderStore struct {
	Pool *pgxpool.Pool
}

const orderColumns = "id, customer, subtotal, shipping_fee, tax, total, transaction_id, status, cancellation_reason, created_at, updated_at"

// Save inserts the order and its items, returning the order with its id.
func (s *OrderStore) Save(ctx context.Context, o order.Order) (order.Order, error) {
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return order.Order{}, fmt.Errorf("encode customer: %w", err)
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return order.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer, subtotal, shipping_fee, tax, total, transaction_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`,
		customer, o.Subtotal, o.Shipping, o.Tax, o.Total, o.TransactionID, string(o.Status), o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err, "orders_transaction_id_key") {
			return order.Order{}, fmt.Errorf("transaction %s: %w", o.TransactionID, order.ErrDuplicateTransaction)
		}
		return order.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, image_url, price, category, quantity, color, size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			o.ID, item.ProductID, item.Name, item.ImageURL, item.Price, item.Category, item.Quantity, item.Variant.Color, item.Variant.Size,
		)
		if err != nil {
			return order.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

// FindByID loads an order and its items.
func (s *OrderStore) FindByID(ctx context.Context, id string) (order.Order, error) {
	row := s.Pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	return s.scanWithItems(ctx, row)
}

// FindByTransactionID loads the order created for a payment transaction.
func (s *OrderStore) FindByTransactionID(ctx context.Context, transactionID string) (order.Order, error) {
	row := s.Pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE transaction_id = $1", transactionID)
	return s.scanWithItems(ctx, row)
}

// List returns a page of orders, newest first, optionally filtered by status.
func (s *OrderStore) List(ctx context.Context, params order.ListParams) ([]order.Order, int64, error) {
	where := ""
	args := []any{}
	if params.Status != "" {
		where = " WHERE status = $1"
		args = append(args, string(params.Status))
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	query := fmt.Sprintf(
		"SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]order.Order, 0, params.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range orders {
		items, err := s.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// UpdateStatus persists a validated status change.
func (s *OrderStore) UpdateStatus(ctx context.Context, o order.Order) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, cancellation_reason = $3, updated_at = $4
		WHERE id = $1`,
		o.ID, string(o.Status), o.CancellationReason, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (s *OrderStore) scanWithItems(ctx context.Context, row pgx.Row) (order.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}
	o.Items, err = s.loadItems(ctx, o.ID)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *OrderStore) loadItems(ctx context.Context, orderID string) ([]order.LineItem, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT product_id, name, image_url, price, category, quantity, color, size
		FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []order.LineItem
	for rows.Next() {
		var item order.LineItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.ImageURL, &item.Price, &item.Category, &item.Quantity, &item.Variant.Color, &item.Variant.Size); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	var customer []byte
	var status string
	err := row.Scan(&o.ID, &customer, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.TransactionID, &status, &o.CancellationReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return order.Order{}, fmt.Errorf("decode customer: %w", err)
	}
	return o, nil
}
