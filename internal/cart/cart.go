package cart

import (
	"errors"
	"fmt"

	"github.com/nkins/storefront/internal/catalog"
	"github.com/nkins/storefront/internal/pricing"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Item is a single cart line: one product+variant pairing with the price
// frozen at the moment it was added. Catalog changes after that never touch
// items already in the cart.
type Item struct {
	ID         string        `json:"id"`
	ProductID  string        `json:"productId"`
	VariantID  string        `json:"variantId"`
	Name       string        `json:"name"`
	Slug       string        `json:"slug"`
	Category   string        `json:"category"`
	ImageURL   string        `json:"imageUrl,omitempty"`
	Color      string        `json:"color,omitempty"`
	Size       string        `json:"size,omitempty"`
	FinalPrice pricing.Money `json:"finalPrice"`
	Quantity   int           `json:"quantity"`
}

// ItemID derives the cart item identity for a product+variant pairing. At
// most one item per distinct pairing exists in a cart.
func ItemID(productID, variantID string) string {
	return productID + ":" + variantID
}

// Cart is the customer's transient pre-checkout selection. It is a plain
// value object owned by a single session; persistence happens through a
// Store, never inside the engine.
type Cart struct {
	Items []Item `json:"items"`
}

// AddItem inserts a new line or merges quantity into an existing one. The
// final price is fixed from the catalog's effective price at insertion time.
// Zero-stock variants are accepted here; stock limits are advisory and
// enforced, if at all, by the caller.
func (c *Cart) AddItem(product catalog.Product, variant catalog.Variant, qty int) (Item, error) {
	if qty <= 0 {
		return Item{}, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	id := ItemID(product.ID, variant.ID)
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity += qty
			return c.Items[i], nil
		}
	}
	price, err := catalog.EffectivePrice(product, variant)
	if err != nil {
		return Item{}, err
	}
	item := Item{
		ID:         id,
		ProductID:  product.ID,
		VariantID:  variant.ID,
		Name:       product.Name,
		Slug:       product.Slug,
		Category:   product.Category,
		ImageURL:   variant.ImageURL,
		Color:      first(variant.Colors),
		Size:       first(variant.Sizes),
		FinalPrice: price,
		Quantity:   qty,
	}
	c.Items = append(c.Items, item)
	return item, nil
}

// UpdateQuantity sets (not adds) the quantity for an item. A quantity of
// zero or less removes the line. It reports whether the item existed.
func (c *Cart) UpdateQuantity(itemID string, qty int) bool {
	if qty <= 0 {
		return c.RemoveItem(itemID)
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = qty
			return true
		}
	}
	return false
}

// RemoveItem deletes the line if present, preserving insertion order of the
// rest. Removing a missing item is a no-op, not an error.
func (c *Cart) RemoveItem(itemID string) bool {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Find returns the item with the given id.
func (c *Cart) Find(itemID string) (Item, bool) {
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

// Count is the total quantity across all lines, recomputed on every call.
func (c *Cart) Count() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of finalPrice times quantity over current items.
func (c *Cart) Total() pricing.Money {
	return pricing.Subtotal(c.PricingItems())
}

// PricingItems projects the cart lines into pricing inputs.
func (c *Cart) PricingItems() []pricing.Item {
	items := make([]pricing.Item, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, pricing.Item{Qty: it.Quantity, UnitPrice: it.FinalPrice})
	}
	return items
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
