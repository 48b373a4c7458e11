package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// Result is the outcome of a best-coupon evaluation. Coupon is nil when no
// catalog entry survived the filter pipeline, in which case Discount is zero.
type Result struct {
	Coupon   *Coupon
	Discount decimal.Decimal
}

// Picker evaluates the full coupon catalog against a shopper and cart and
// selects the single best applicable coupon.
type Picker struct {
	catalog  Catalog
	usage    UsageStore
	now      func() time.Time
	selected metric.Int64Counter
}

// Option configures a Picker.
type Option func(*Picker)

// WithNow overrides the evaluation clock. Used by tests to pin the
// evaluation date.
func WithNow(now func() time.Time) Option {
	return func(p *Picker) { p.now = now }
}

// WithMeterProvider registers a counter of selected coupons on the given
// meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Picker) {
		meter := mp.Meter("coupon-engine/picker")
		counter, err := meter.Int64Counter("coupons_selected_total",
			metric.WithDescription("Number of evaluations that returned a coupon"),
		)
		if err == nil {
			p.selected = counter
		}
	}
}

// NewPicker creates a Picker over the given catalog and usage store.
func NewPicker(catalog Catalog, usage UsageStore, opts ...Option) *Picker {
	p := &Picker{
		catalog: catalog,
		usage:   usage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FindBest runs the filter pipeline over every coupon in the catalog and
// returns the best surviving candidate. Per coupon the checks run in a fixed
// order and short-circuit on the first failure: date window, remaining
// per-user usage, user eligibility, cart eligibility, then discount
// computation. A coupon becomes a candidate only when its discount is
// strictly positive.
//
// The usage counter is incremented exactly once, for the selected coupon of
// a non-empty result. An evaluation that selects nothing mutates no state,
// so re-running it with identical inputs yields an identical result.
func (p *Picker) FindBest(ctx context.Context, user UserContext, cart Cart) (Result, error) {
	coupons, err := p.catalog.ListAll(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "list catalog")
	}

	sum := Summarize(cart)
	today := p.now()
	isFirstOrder := user.IsFirstOrder()

	var candidates []Candidate
	for i := range coupons {
		c := &coupons[i]

		if !c.ActiveOn(today) {
			continue
		}

		ok, err := p.hasRemainingUsage(ctx, c, user.UserID)
		if err != nil {
			return Result{}, errors.Wrapf(err, "usage count for %q", c.Code)
		}
		if !ok {
			continue
		}

		if !UserEligible(c.Eligibility, user, isFirstOrder) {
			continue
		}
		if !CartEligible(c.Eligibility, sum) {
			continue
		}

		if d := ComputeDiscount(c, sum.Value); d.IsPositive() {
			candidates = append(candidates, Candidate{Coupon: c, Discount: d})
		}
	}

	best, ok := SelectBest(candidates)
	if !ok {
		return Result{Discount: decimal.Zero}, nil
	}

	if _, err := p.usage.Increment(ctx, user.UserID, best.Coupon.Code); err != nil {
		return Result{}, errors.Wrapf(err, "increment usage for %q", best.Coupon.Code)
	}
	if p.selected != nil {
		p.selected.Add(ctx, 1)
	}

	return Result{Coupon: best.Coupon, Discount: best.Discount}, nil
}

// hasRemainingUsage reports whether the user's recorded redemptions of the
// coupon are strictly below its per-user limit. Coupons without a limit
// always pass; the usage store is not consulted for them.
func (p *Picker) hasRemainingUsage(ctx context.Context, c *Coupon, userID string) (bool, error) {
	if c.UsageLimitPerUser == nil {
		return true, nil
	}
	used, err := p.usage.Count(ctx, userID, c.Code)
	if err != nil {
		return false, err
	}
	return used < *c.UsageLimitPerUser, nil
}
