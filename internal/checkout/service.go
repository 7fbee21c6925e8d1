package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkins/storefront/internal/cart"
	"github.com/nkins/storefront/internal/order"
	"github.com/nkins/storefront/internal/pricing"
)

// ErrEmptyCart is returned when checkout is attempted on an empty or
// unknown cart.
var ErrEmptyCart = errors.New("cart is empty")

// Input is the checkout request payload.
type Input struct {
	CartID        string         `json:"cartId" validate:"required"`
	Customer      order.Customer `json:"customer"`
	TransactionID string         `json:"transactionId" validate:"required"`
}

// Service turns a saved cart into a placed order. Shipping is a flat rate
// and tax a fraction of the subtotal, both from configuration.
type Service struct {
	Carts        cart.Store
	Orders       *order.Service
	ShippingFlat pricing.Money
	TaxRateBps   int64
	Logger       zerolog.Logger
}

// ServiceConfig wires the checkout service dependencies.
type ServiceConfig struct {
	Carts        cart.Store
	Orders       *order.Service
	ShippingFlat pricing.Money
	TaxRateBps   int64
	Logger       zerolog.Logger
}

// NewService validates and builds a checkout Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Carts == nil {
		return nil, errors.New("checkout service: cart store is not configured")
	}
	if cfg.Orders == nil {
		return nil, errors.New("checkout service: order service is not configured")
	}
	return &Service{
		Carts:        cfg.Carts,
		Orders:       cfg.Orders,
		ShippingFlat: cfg.ShippingFlat,
		TaxRateBps:   cfg.TaxRateBps,
		Logger:       cfg.Logger,
	}, nil
}

// Checkout loads the cart, forms an order from its frozen lines and clears
// the cart once the order is saved. Clearing is best effort: a leftover
// cart is harmless, a lost order is not.
func (s *Service) Checkout(ctx context.Context, in Input) (order.Order, error) {
	c, err := s.Carts.Load(ctx, in.CartID)
	if err != nil {
		return order.Order{}, fmt.Errorf("load cart: %w", err)
	}
	if len(c.Items) == 0 {
		return order.Order{}, fmt.Errorf("cart %s: %w", in.CartID, ErrEmptyCart)
	}

	lines := make([]order.LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, order.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Price:     item.FinalPrice,
			Category:  item.Category,
			Quantity:  item.Quantity,
			Variant:   order.VariantChoice{Color: item.Color, Size: item.Size},
		})
	}

	subtotal := c.Total()
	tax := subtotal * pricing.Money(s.TaxRateBps) / 10000

	o, err := s.Orders.Create(ctx, in.Customer, lines, s.ShippingFlat, tax, in.TransactionID)
	if err != nil {
		return order.Order{}, err
	}

	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.Carts.Delete(clearCtx, in.CartID); err != nil {
		s.Logger.Warn().Err(err).Str("cart_id", in.CartID).Str("order_id", o.ID).Msg("clear cart after checkout failed")
	}
	return o, nil
}
