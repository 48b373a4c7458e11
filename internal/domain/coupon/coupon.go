package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountFlat subtracts a fixed monetary amount from the cart value.
	DiscountFlat DiscountType = "FLAT"
	// DiscountPercent subtracts a percentage of the cart value, optionally
	// capped by MaxDiscountAmount.
	DiscountPercent DiscountType = "PERCENT"
)

var (
	// ErrDuplicateCode is returned by Catalog.Insert when a coupon with the
	// same normalized code already exists. The catalog is left unchanged.
	ErrDuplicateCode = errors.New("coupon code already exists")
	// ErrNotFound is returned by Catalog.GetByCode for unknown codes.
	ErrNotFound = errors.New("coupon not found")
	// ErrInvalidDiscountType is returned when creating a coupon whose
	// discount type is neither FLAT nor PERCENT.
	ErrInvalidDiscountType = errors.New("discount type must be FLAT or PERCENT")
	// ErrInvalidDateRange is returned when creating a coupon whose start
	// date falls after its end date.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)

// Rule is the conjunctive eligibility rule set attached to a coupon. Every
// field is optional; a nil or empty field imposes no constraint.
type Rule struct {
	// User-side constraints.
	AllowedUserTiers []string
	MinLifetimeSpend *decimal.Decimal
	MinOrdersPlaced  *int
	FirstOrderOnly   bool
	AllowedCountries []string

	// Cart-side constraints.
	MinCartValue         *decimal.Decimal
	MinItemsCount        *int
	ApplicableCategories []string
	ExcludedCategories   []string
}

// Coupon is a promotional coupon. Coupons are immutable once inserted into a
// catalog and are keyed by their upper-cased code.
type Coupon struct {
	Code              string
	Description       string
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	MaxDiscountAmount *decimal.Decimal
	StartDate         time.Time
	EndDate           time.Time
	UsageLimitPerUser *int
	Eligibility       Rule
}

// NormalizeCode folds a coupon code to its canonical upper-case form. All
// catalog lookups and inserts go through this fold.
func NormalizeCode(code string) string {
	return strings.ToUpper(code)
}

// Normalize folds the coupon's code and discount type to their canonical
// upper-case forms. Called once before catalog insertion.
func (c *Coupon) Normalize() {
	c.Code = NormalizeCode(c.Code)
	c.DiscountType = DiscountType(strings.ToUpper(string(c.DiscountType)))
}

// Validate checks creation-time invariants: a known discount type, a
// non-negative discount value, and an ordered validity window. Evaluation
// assumes coupons in the catalog have passed this check.
func (c *Coupon) Validate() error {
	switch DiscountType(strings.ToUpper(string(c.DiscountType))) {
	case DiscountFlat, DiscountPercent:
	default:
		return ErrInvalidDiscountType
	}
	if c.DiscountValue.IsNegative() {
		return errors.New("discount value must not be negative")
	}
	if DateOf(c.StartDate).After(DateOf(c.EndDate)) {
		return ErrInvalidDateRange
	}
	return nil
}

// ActiveOn reports whether day falls within the coupon's validity window.
// Both bounds are inclusive and compared at day granularity in UTC.
func (c *Coupon) ActiveOn(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(c.StartDate)) && !d.After(DateOf(c.EndDate))
}

// DateOf truncates t to midnight UTC, the granularity at which coupon
// validity windows are evaluated.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UserContext is the shopper profile supplied with each evaluation request.
// It is never persisted by this service.
type UserContext struct {
	UserID        string
	Tier          string
	Country       string
	LifetimeSpend decimal.Decimal
	OrdersPlaced  int
}

// IsFirstOrder reports whether the user is placing their first order: a user
// with zero recorded orders is treated as first-time.
func (u UserContext) IsFirstOrder() bool {
	return u.OrdersPlaced == 0
}

// Catalog provides read access and insert-only mutation of the coupon set.
// Implementations must be safe for concurrent readers.
type Catalog interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Insert(ctx context.Context, c *Coupon) error
	ListAll(ctx context.Context) ([]Coupon, error)
}

// UsageStore tracks per-(user, code) redemption counts. Increment must be
// atomic per key so concurrent redemptions never lose an update.
type UsageStore interface {
	Count(ctx context.Context, userID, code string) (int, error)
	Increment(ctx context.Context, userID, code string) (int, error)
}
