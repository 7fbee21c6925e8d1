package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money
	Shipping Money
	Tax      Money
	Total    Money
}

// Subtotal sums price times quantity over the provided items. Items with a
// non-positive quantity are ignored.
func Subtotal(items []Item) Money {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	return subtotal
}

// Compute calculates order totals given the provided inputs. Shipping and tax
// are taken as amounts, not rates; negative inputs are clamped to zero.
func Compute(items []Item, shipping, tax Money) Summary {
	subtotal := Subtotal(items)
	if shipping < 0 {
		shipping = 0
	}
	if tax < 0 {
		tax = 0
	}
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
