package coupon

import "github.com/shopspring/decimal"

// CartItem is a single line item in a shopper's cart.
type CartItem struct {
	ProductID string
	Category  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Cart is an ordered sequence of line items.
type Cart struct {
	Items []CartItem
}

// CartSummary holds the aggregates derived from a cart: total monetary
// value, total item count, and the set of distinct categories present.
// Eligibility and discount computation both work from one summary so the
// cart is only walked once per evaluation pass.
type CartSummary struct {
	Value      decimal.Decimal
	ItemCount  int
	Categories map[string]struct{}
}

// Summarize derives the cart aggregates. Pure function of the cart; an empty
// cart yields a zero value, zero count, and an empty category set.
func Summarize(cart Cart) CartSummary {
	s := CartSummary{
		Value:      decimal.Zero,
		Categories: make(map[string]struct{}, len(cart.Items)),
	}
	for _, item := range cart.Items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		s.Value = s.Value.Add(line)
		s.ItemCount += item.Quantity
		s.Categories[item.Category] = struct{}{}
	}
	return s
}

// HasAnyCategory reports whether at least one cart category appears in the
// given set.
func (s CartSummary) HasAnyCategory(categories []string) bool {
	for _, c := range categories {
		if _, ok := s.Categories[c]; ok {
			return true
		}
	}
	return false
}
