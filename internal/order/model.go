package order

import (
	"errors"
	"time"

	"github.com/nkins/storefront/internal/pricing"
)

// ErrNotFound indicates the requested order could not be located.
var ErrNotFound = errors.New("order not found")

// ErrValidation is returned when a checkout payload is missing or malformed.
// The wrapping message names the offending field.
var ErrValidation = errors.New("validation failed")

// ErrDuplicateTransaction is returned when an order already exists for the
// given transaction id. The transaction id doubles as a payment receipt, so
// a second order for it must never be created.
var ErrDuplicateTransaction = errors.New("transaction already has an order")

// ErrInvalidTransition is returned for an illegal status change.
var ErrInvalidTransition = errors.New("status transition not allowed")

// Customer holds the checkout form data captured on the order.
type Customer struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country"`
	Phone     string `json:"phone" validate:"required"`
}

// VariantChoice records the chosen configuration on a frozen line item.
type VariantChoice struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// LineItem is a frozen snapshot of a purchased product+variant. It carries
// no live reference into the catalog: later catalog edits never change what
// the order says was bought.
type LineItem struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	ImageURL  string        `json:"imageUrl,omitempty"`
	Price     pricing.Money `json:"price"`
	Category  string        `json:"category,omitempty"`
	Quantity  int           `json:"quantity"`
	Variant   VariantChoice `json:"variant"`
}

// Order is the immutable priced record created at checkout. Only status and
// cancellationReason may change after creation.
type Order struct {
	ID                 string          `json:"id"`
	Customer           Customer        `json:"customer"`
	Items              []LineItem      `json:"items"`
	Subtotal           pricing.Money   `json:"subtotal"`
	Shipping           pricing.Money   `json:"shipping"`
	Tax                pricing.Money   `json:"tax"`
	Total              pricing.Money   `json:"total"`
	TransactionID      string          `json:"transactionId"`
	Status             Status          `json:"status"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}
