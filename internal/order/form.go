package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nkins/storefront/internal/pricing"
)

// defaultCountry is stamped on orders whose checkout form left the field blank.
const defaultCountry = "Nigeria"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Form builds a priced, pending order from checkout data. It is a pure
// constructor: no id is assigned and nothing is persisted. Item prices and
// quantities must be positive, the customer form must be complete and the
// transaction id non-empty.
func Form(customer Customer, items []LineItem, shipping, tax pricing.Money, transactionID string, now time.Time) (Order, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return Order{}, fmt.Errorf("transactionId is required: %w", ErrValidation)
	}
	if err := validateCustomer(customer); err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, fmt.Errorf("order must contain at least one item: %w", ErrValidation)
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return Order{}, fmt.Errorf("items[%d].productId is required: %w", i, ErrValidation)
		}
		if item.Price <= 0 {
			return Order{}, fmt.Errorf("items[%d].price must be positive: %w", i, ErrValidation)
		}
		if item.Quantity <= 0 {
			return Order{}, fmt.Errorf("items[%d].quantity must be positive: %w", i, ErrValidation)
		}
	}
	if shipping < 0 {
		return Order{}, fmt.Errorf("shipping must not be negative: %w", ErrValidation)
	}
	if tax < 0 {
		return Order{}, fmt.Errorf("tax must not be negative: %w", ErrValidation)
	}

	if strings.TrimSpace(customer.Country) == "" {
		customer.Country = defaultCountry
	}

	priced := make([]pricing.Item, 0, len(items))
	for _, item := range items {
		priced = append(priced, pricing.Item{Qty: item.Quantity, UnitPrice: item.Price})
	}
	summary := pricing.Compute(priced, shipping, tax)

	frozen := make([]LineItem, len(items))
	copy(frozen, items)

	return Order{
		Customer:      customer,
		Items:         frozen,
		Subtotal:      summary.Subtotal,
		Shipping:      summary.Shipping,
		Tax:           summary.Tax,
		Total:         summary.Total,
		TransactionID: transactionID,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func validateCustomer(customer Customer) error {
	err := validate.Struct(customer)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, "customer."+lowerFirst(fe.Field()))
		}
		return fmt.Errorf("%s: %w", strings.Join(fields, ", "), ErrValidation)
	}
	return fmt.Errorf("customer: %w", ErrValidation)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
