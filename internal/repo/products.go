package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkins/storefront/internal/catalog"
)

// ProductStore persists catalog products in Postgres. Variants are stored
// denormalized as JSONB since they are always read and written with their
// product.
type ProductStore struct {
	Pool *pgxpool.Pool
}

const productColumns = "id, name, description, category, base_price, slug, variants, created_at, updated_at"

// GetProductBySlug returns the product published under slug.
func (s *ProductStore) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	row := s.Pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE slug = $1", slug)
	return scanProduct(row)
}

// GetProductByID returns the product by primary key.
func (s *ProductStore) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	row := s.Pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

// ListProducts returns a category-filtered page of products with the total.
func (s *ProductStore) ListProducts(ctx context.Context, params catalog.ListParams) ([]catalog.Product, int64, error) {
	where := ""
	args := []any{}
	if params.Category != "" {
		where = " WHERE category = $1"
		args = append(args, params.Category)
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	query := fmt.Sprintf(
		"SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// CreateProduct inserts a normalized product and returns it with its id.
func (s *ProductStore) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("encode variants: %w", err)
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO products (name, description, category, base_price, slug, variants)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Category, p.BasePrice, p.Slug, variants,
	)
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return catalog.Product{}, fmt.Errorf("slug %q already in use: %w", p.Slug, catalog.ErrInvalidInput)
		}
		return catalog.Product{}, err
	}
	return created, nil
}

// UpdateProduct replaces the stored product fields and bumps updated_at.
func (s *ProductStore) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("encode variants: %w", err)
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, base_price = $5, slug = $6, variants = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Category, p.BasePrice, p.Slug, variants,
	)
	updated, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return catalog.Product{}, fmt.Errorf("slug %q already in use: %w", p.Slug, catalog.ErrInvalidInput)
		}
		return catalog.Product{}, err
	}
	return updated, nil
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	var variants []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.BasePrice, &p.Slug, &variants, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, fmt.Errorf("scan product: %w", err)
	}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return catalog.Product{}, fmt.Errorf("decode variants: %w", err)
		}
	}
	return p, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
}
