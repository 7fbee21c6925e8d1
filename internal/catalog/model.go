package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkins/storefront/internal/pricing"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidPrice indicates a variant whose effective price would be
// negative. This is bad catalog data and should never reach a customer.
var ErrInvalidPrice = errors.New("effective price is negative")

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID              string        `json:"id"`
	Colors          []string      `json:"colors"`
	Sizes           []string      `json:"sizes"`
	PriceAdjustment pricing.Money `json:"priceAdjustment"`
	Stock           int           `json:"stock"`
	ImageURL        string        `json:"imageUrl"`
	SKU             string        `json:"sku,omitempty"`
}

// Product aggregates catalog data including its variants.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	BasePrice   pricing.Money `json:"basePrice"`
	Slug        string        `json:"slug"`
	Variants    []Variant     `json:"variants"`
	CreatedAt   time.Time     `json:"createdAt,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt,omitempty"`
}

// Variant returns the variant with the given id.
func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// EffectivePrice resolves the price charged for a variant: the product base
// price plus the variant adjustment. A negative result is a data fault.
func EffectivePrice(p Product, v Variant) (pricing.Money, error) {
	price := p.BasePrice + v.PriceAdjustment
	if price < 0 {
		return 0, fmt.Errorf("product %s variant %s: base %d adjustment %d: %w", p.ID, v.ID, p.BasePrice, v.PriceAdjustment, ErrInvalidPrice)
	}
	return price, nil
}

// DeriveSlug converts a product name into its URL-safe slug: lowercased,
// non-alphanumeric runs collapsed to a single hyphen, no leading or trailing
// hyphen. The function is idempotent.
func DeriveSlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// DeriveSku builds a stock keeping unit from the slug and the variant's first
// color and size. Used only when a variant carries no explicit SKU.
func DeriveSku(slug string, colors, sizes []string) string {
	colorCode := "CLR"
	if len(colors) > 0 && colors[0] != "" {
		code := []rune(colors[0])
		if len(code) > 3 {
			code = code[:3]
		}
		colorCode = strings.ToUpper(string(code))
	}
	sizeCode := "SZ"
	if len(sizes) > 0 && sizes[0] != "" {
		stripped := strings.Join(strings.Fields(sizes[0]), "")
		if stripped != "" {
			sizeCode = strings.ToUpper(stripped)
		}
	}
	prefix := []rune(slug)
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	return strings.ToUpper(string(prefix) + "-" + colorCode + "-" + sizeCode)
}

// Normalize validates a product and fills derived fields (slug, variant IDs,
// SKUs). It runs once at create/update time; derived values are persisted,
// never recomputed per request.
func Normalize(p *Product) error {
	if p == nil {
		return fmt.Errorf("product is nil: %w", ErrInvalidInput)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("base price must be non-negative: %w", ErrInvalidInput)
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("product needs at least one variant: %w", ErrInvalidInput)
	}
	if p.Slug == "" {
		p.Slug = DeriveSlug(p.Name)
	}
	if p.Slug == "" {
		return fmt.Errorf("name yields an empty slug: %w", ErrInvalidInput)
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		if v.Stock < 0 {
			return fmt.Errorf("variant %s: stock must be non-negative: %w", v.ID, ErrInvalidInput)
		}
		if _, err := EffectivePrice(*p, *v); err != nil {
			return err
		}
		if v.SKU == "" {
			v.SKU = DeriveSku(p.Slug, v.Colors, v.Sizes)
		}
	}
	return nil
}
