package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store defines the catalog read/write collaborator. Implementations map
// their own missing-row errors to ErrNotFound.
type Store interface {
	GetProductBySlug(ctx context.Context, slug string) (Product, error)
	GetProductByID(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, params ListParams) ([]Product, int64, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) (Product, error)
}

// ListParams captures filters for product listing.
type ListParams struct {
	Category string
	Page     int
	Limit    int
}

// Service orchestrates catalog queries, derivation rules, and caching.
type Service struct {
	store        Store
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        Store
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// NewService validates configuration and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 12
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}, nil
}

// List returns a page of products with the total count.
func (s *Service) List(ctx context.Context, params ListParams) ([]Product, int64, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = s.defaultLimit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	params.Category = strings.TrimSpace(params.Category)
	return s.store.ListProducts(ctx, params)
}

// BySlug resolves a product detail, consulting the cache first.
func (s *Service) BySlug(ctx context.Context, slug string) (Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Product{}, fmt.Errorf("slug is required: %w", ErrInvalidInput)
	}
	key := cacheKey(slug)
	var cached Product
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.SetJSON(ctx, key, product)
	return product, nil
}

// ByID resolves a product by identifier. Reads go straight to the store; the
// cache is keyed by slug only.
func (s *Service) ByID(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, fmt.Errorf("id is required: %w", ErrInvalidInput)
	}
	return s.store.GetProductByID(ctx, id)
}

// Create normalizes and persists a new product. Slug and SKU derivation run
// here, once, and the derived values are stored.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := Normalize(&p); err != nil {
		return Product{}, err
	}
	return s.store.CreateProduct(ctx, p)
}

// Update normalizes and persists changes to an existing product, dropping
// any stale cached detail.
func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Product{}, fmt.Errorf("id is required: %w", ErrInvalidInput)
	}
	if err := Normalize(&p); err != nil {
		return Product{}, err
	}
	updated, err := s.store.UpdateProduct(ctx, p)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Delete(ctx, cacheKey(updated.Slug))
	return updated, nil
}

func cacheKey(slug string) string {
	return "catalog:product:" + slug
}
