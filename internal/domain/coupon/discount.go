package coupon

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount calculates the monetary discount a coupon grants against
// the given cart value. The result always lies in [0, cartValue].
//
// FLAT coupons grant their value outright and ignore MaxDiscountAmount.
// PERCENT coupons grant value% of the cart, capped by MaxDiscountAmount when
// present. Any other discount type computes to zero rather than erroring;
// such coupons simply never become candidates.
func ComputeDiscount(c *Coupon, cartValue decimal.Decimal) decimal.Decimal {
	var raw decimal.Decimal
	switch DiscountType(strings.ToUpper(string(c.DiscountType))) {
	case DiscountFlat:
		raw = c.DiscountValue
	case DiscountPercent:
		raw = cartValue.Mul(c.DiscountValue).Div(hundred).Round(2)
		if c.MaxDiscountAmount != nil {
			raw = decimal.Min(raw, *c.MaxDiscountAmount)
		}
	default:
		raw = decimal.Zero
	}

	if raw.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(raw, cartValue)
}
