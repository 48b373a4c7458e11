package handler

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
)

// Hand-rolled jx codecs for the wire types. Dates travel as "2006-01-02"
// strings; money travels as JSON numbers. Unknown object keys are skipped so
// clients can send extra fields without breaking.

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(string(n), `"`))
}

func decodeDate(d *jx.Decoder) (time.Time, error) {
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "date %q", s)
	}
	return t, nil
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	var out []string
	if err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// skipNull consumes a JSON null and reports whether it did. Optional fields
// sent as explicit nulls decode the same as absent fields.
func skipNull(d *jx.Decoder) (bool, error) {
	if d.Next() != jx.Null {
		return false, nil
	}
	return true, d.Null()
}

func decodeRule(d *jx.Decoder, rule *coupon.Rule) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		if ok, err := skipNull(d); ok || err != nil {
			return err
		}
		var err error
		switch key {
		case "allowedUserTiers":
			rule.AllowedUserTiers, err = decodeStrings(d)
		case "minLifetimeSpend":
			var v decimal.Decimal
			if v, err = decodeDecimal(d); err == nil {
				rule.MinLifetimeSpend = &v
			}
		case "minOrdersPlaced":
			var v int
			if v, err = d.Int(); err == nil {
				rule.MinOrdersPlaced = &v
			}
		case "firstOrderOnly":
			rule.FirstOrderOnly, err = d.Bool()
		case "allowedCountries":
			rule.AllowedCountries, err = decodeStrings(d)
		case "minCartValue":
			var v decimal.Decimal
			if v, err = decodeDecimal(d); err == nil {
				rule.MinCartValue = &v
			}
		case "minItemsCount":
			var v int
			if v, err = d.Int(); err == nil {
				rule.MinItemsCount = &v
			}
		case "applicableCategories":
			rule.ApplicableCategories, err = decodeStrings(d)
		case "excludedCategories":
			rule.ExcludedCategories, err = decodeStrings(d)
		default:
			return d.Skip()
		}
		return err
	})
}

func decodeCoupon(d *jx.Decoder) (coupon.Coupon, error) {
	var (
		c    coupon.Coupon
		seen = map[string]bool{}
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if ok, err := skipNull(d); ok || err != nil {
			return err
		}
		seen[key] = true
		var err error
		switch key {
		case "code":
			c.Code, err = d.Str()
		case "description":
			c.Description, err = d.Str()
		case "discountType":
			var s string
			if s, err = d.Str(); err == nil {
				c.DiscountType = coupon.DiscountType(s)
			}
		case "discountValue":
			c.DiscountValue, err = decodeDecimal(d)
		case "maxDiscountAmount":
			var v decimal.Decimal
			if v, err = decodeDecimal(d); err == nil {
				c.MaxDiscountAmount = &v
			}
		case "startDate":
			c.StartDate, err = decodeDate(d)
		case "endDate":
			c.EndDate, err = decodeDate(d)
		case "usageLimitPerUser":
			var v int
			if v, err = d.Int(); err == nil {
				c.UsageLimitPerUser = &v
			}
		case "eligibility":
			err = decodeRule(d, &c.Eligibility)
		default:
			return d.Skip()
		}
		return err
	}); err != nil {
		return coupon.Coupon{}, err
	}

	for _, req := range []string{"code", "discountType", "discountValue", "startDate", "endDate"} {
		if !seen[req] {
			return coupon.Coupon{}, errors.Errorf("missing required field %q", req)
		}
	}
	if c.Code == "" {
		return coupon.Coupon{}, errors.New("code must not be empty")
	}
	return c, nil
}

func decodeUser(d *jx.Decoder) (coupon.UserContext, error) {
	var (
		u    coupon.UserContext
		seen = map[string]bool{}
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		seen[key] = true
		var err error
		switch key {
		case "userId":
			u.UserID, err = d.Str()
		case "userTier":
			u.Tier, err = d.Str()
		case "country":
			u.Country, err = d.Str()
		case "lifetimeSpend":
			u.LifetimeSpend, err = decodeDecimal(d)
		case "ordersPlaced":
			u.OrdersPlaced, err = d.Int()
		default:
			return d.Skip()
		}
		return err
	}); err != nil {
		return coupon.UserContext{}, err
	}
	if !seen["userId"] || u.UserID == "" {
		return coupon.UserContext{}, errors.New("user.userId must not be empty")
	}
	return u, nil
}

func decodeCart(d *jx.Decoder) (coupon.Cart, error) {
	var cart coupon.Cart
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			var item coupon.CartItem
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "productId":
					item.ProductID, err = d.Str()
				case "category":
					item.Category, err = d.Str()
				case "unitPrice":
					item.UnitPrice, err = decodeDecimal(d)
				case "quantity":
					item.Quantity, err = d.Int()
				default:
					return d.Skip()
				}
				return err
			}); err != nil {
				return err
			}
			if item.Quantity < 0 {
				return errors.Errorf("negative quantity for product %q", item.ProductID)
			}
			cart.Items = append(cart.Items, item)
			return nil
		})
	})
	return cart, err
}

type bestCouponRequest struct {
	User coupon.UserContext
	Cart coupon.Cart
}

func decodeBestCouponRequest(d *jx.Decoder) (bestCouponRequest, error) {
	var (
		req  bestCouponRequest
		seen = map[string]bool{}
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		seen[key] = true
		var err error
		switch key {
		case "user":
			req.User, err = decodeUser(d)
		case "cart":
			req.Cart, err = decodeCart(d)
		default:
			return d.Skip()
		}
		return err
	}); err != nil {
		return bestCouponRequest{}, err
	}
	if !seen["user"] {
		return bestCouponRequest{}, errors.New(`missing required field "user"`)
	}
	if !seen["cart"] {
		return bestCouponRequest{}, errors.New(`missing required field "cart"`)
	}
	return req, nil
}

func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

func encodeStrings(e *jx.Encoder, field string, values []string) {
	if len(values) == 0 {
		return
	}
	e.Field(field, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, v := range values {
				e.Str(v)
			}
		})
	})
}

func encodeRule(e *jx.Encoder, rule coupon.Rule) {
	e.Obj(func(e *jx.Encoder) {
		encodeStrings(e, "allowedUserTiers", rule.AllowedUserTiers)
		if rule.MinLifetimeSpend != nil {
			e.Field("minLifetimeSpend", func(e *jx.Encoder) { encodeDecimal(e, *rule.MinLifetimeSpend) })
		}
		if rule.MinOrdersPlaced != nil {
			e.Field("minOrdersPlaced", func(e *jx.Encoder) { e.Int(*rule.MinOrdersPlaced) })
		}
		if rule.FirstOrderOnly {
			e.Field("firstOrderOnly", func(e *jx.Encoder) { e.Bool(true) })
		}
		encodeStrings(e, "allowedCountries", rule.AllowedCountries)
		if rule.MinCartValue != nil {
			e.Field("minCartValue", func(e *jx.Encoder) { encodeDecimal(e, *rule.MinCartValue) })
		}
		if rule.MinItemsCount != nil {
			e.Field("minItemsCount", func(e *jx.Encoder) { e.Int(*rule.MinItemsCount) })
		}
		encodeStrings(e, "applicableCategories", rule.ApplicableCategories)
		encodeStrings(e, "excludedCategories", rule.ExcludedCategories)
	})
}

func encodeCoupon(e *jx.Encoder, c *coupon.Coupon) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		e.Field("description", func(e *jx.Encoder) { e.Str(c.Description) })
		e.Field("discountType", func(e *jx.Encoder) { e.Str(string(c.DiscountType)) })
		e.Field("discountValue", func(e *jx.Encoder) { encodeDecimal(e, c.DiscountValue) })
		if c.MaxDiscountAmount != nil {
			e.Field("maxDiscountAmount", func(e *jx.Encoder) { encodeDecimal(e, *c.MaxDiscountAmount) })
		}
		e.Field("startDate", func(e *jx.Encoder) { e.Str(c.StartDate.Format(time.DateOnly)) })
		e.Field("endDate", func(e *jx.Encoder) { e.Str(c.EndDate.Format(time.DateOnly)) })
		if c.UsageLimitPerUser != nil {
			e.Field("usageLimitPerUser", func(e *jx.Encoder) { e.Int(*c.UsageLimitPerUser) })
		}
		e.Field("eligibility", func(e *jx.Encoder) { encodeRule(e, c.Eligibility) })
	})
}

func encodeBestCouponResponse(e *jx.Encoder, res coupon.Result) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("coupon", func(e *jx.Encoder) {
			if res.Coupon == nil {
				e.Null()
				return
			}
			encodeCoupon(e, res.Coupon)
		})
		e.Field("discountAmount", func(e *jx.Encoder) { encodeDecimal(e, res.Discount) })
	})
}
