package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	coupons []Coupon
	err     error
}

func (m *mockCatalog) GetByCode(_ context.Context, code string) (*Coupon, error) {
	for i := range m.coupons {
		if m.coupons[i].Code == code {
			return &m.coupons[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockCatalog) Insert(_ context.Context, c *Coupon) error {
	m.coupons = append(m.coupons, *c)
	return nil
}

func (m *mockCatalog) ListAll(_ context.Context) ([]Coupon, error) {
	return m.coupons, m.err
}

type mockUsage struct {
	counts     map[string]int
	countCalls int
	increments []string
}

func usageKey(userID, code string) string {
	return userID + "/" + code
}

func (m *mockUsage) Count(_ context.Context, userID, code string) (int, error) {
	m.countCalls++
	return m.counts[usageKey(userID, code)], nil
}

func (m *mockUsage) Increment(_ context.Context, userID, code string) (int, error) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	key := usageKey(userID, code)
	m.counts[key]++
	m.increments = append(m.increments, key)
	return m.counts[key], nil
}

func TestPickerFindBest(t *testing.T) {
	evalDay := date(2025, 6, 15)

	activeWindow := func(c Coupon) Coupon {
		c.StartDate = date(2025, 1, 1)
		c.EndDate = date(2025, 12, 31)
		return c
	}

	user := UserContext{
		UserID:        "u1",
		Tier:          "REGULAR",
		Country:       "US",
		LifetimeSpend: decimal.NewFromInt(300),
		OrdersPlaced:  4,
	}
	cart := Cart{Items: []CartItem{
		{ProductID: "p1", Category: "grocery", UnitPrice: decimal.NewFromInt(20), Quantity: 5},
	}}
	// cart value = 100

	tests := []struct {
		name           string
		coupons        []Coupon
		usage          map[string]int
		wantCode       string
		wantDiscount   string
		wantNone       bool
		wantIncrements []string
	}{
		{
			name:     "empty catalog selects nothing and mutates nothing",
			wantNone: true,
		},
		{
			name: "best discount wins and only its usage is incremented",
			coupons: []Coupon{
				activeWindow(Coupon{Code: "FLAT5", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(5)}),
				activeWindow(Coupon{Code: "TEN", DiscountType: DiscountPercent, DiscountValue: decimal.NewFromInt(10)}),
			},
			wantCode:       "TEN",
			wantDiscount:   "10",
			wantIncrements: []string{"u1/TEN"},
		},
		{
			name: "out-of-window coupon is excluded",
			coupons: []Coupon{
				{Code: "EXPIRED", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(50),
					StartDate: date(2024, 1, 1), EndDate: date(2024, 12, 31)},
				activeWindow(Coupon{Code: "LIVE", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(5)}),
			},
			wantCode:       "LIVE",
			wantDiscount:   "5",
			wantIncrements: []string{"u1/LIVE"},
		},
		{
			name: "window bounds are inclusive",
			coupons: []Coupon{
				{Code: "LASTDAY", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(5),
					StartDate: date(2025, 6, 15), EndDate: date(2025, 6, 15)},
			},
			wantCode:       "LASTDAY",
			wantDiscount:   "5",
			wantIncrements: []string{"u1/LASTDAY"},
		},
		{
			name: "exhausted per-user limit excludes an otherwise eligible coupon",
			coupons: []Coupon{
				activeWindow(Coupon{Code: "ONCE", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(50),
					UsageLimitPerUser: intPtr(1)}),
				activeWindow(Coupon{Code: "BACKUP", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(5)}),
			},
			usage:          map[string]int{"u1/ONCE": 1},
			wantCode:       "BACKUP",
			wantDiscount:   "5",
			wantIncrements: []string{"u1/BACKUP"},
		},
		{
			name: "usage below the limit still qualifies",
			coupons: []Coupon{
				activeWindow(Coupon{Code: "TWICE", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(8),
					UsageLimitPerUser: intPtr(2)}),
			},
			usage:          map[string]int{"u1/TWICE": 1},
			wantCode:       "TWICE",
			wantDiscount:   "8",
			wantIncrements: []string{"u1/TWICE"},
		},
		{
			name: "user-ineligible coupon is excluded",
			coupons: []Coupon{
				activeWindow(Coupon{Code: "GOLDONLY", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(50),
					Eligibility: Rule{AllowedUserTiers: []string{"GOLD"}}}),
			},
			wantNone: true,
		},
		{
			name: "cart-ineligible coupon is excluded",
			coupons: []Coupon{
				activeWindow(Coupon{Code: "TECH", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(50),
					Eligibility: Rule{ApplicableCategories: []string{"electronics"}}}),
			},
			wantNone: true,
		},
		{
			name: "zero-discount survivor never becomes a candidate",
			coupons: []Coupon{
				activeWindow(Coupon{Code: "WEIRD", DiscountType: "MYSTERY", DiscountValue: decimal.NewFromInt(10)}),
			},
			wantNone: true,
		},
		{
			name: "tie on discount resolved by earlier end date",
			coupons: []Coupon{
				{Code: "B10", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(15),
					StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 1)},
				{Code: "A10", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(15),
					StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31)},
			},
			wantCode:       "B10",
			wantDiscount:   "15",
			wantIncrements: []string{"u1/B10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage := &mockUsage{counts: tt.usage}
			p := NewPicker(&mockCatalog{coupons: tt.coupons}, usage,
				WithNow(func() time.Time { return evalDay }),
			)

			got, err := p.FindBest(context.Background(), user, cart)
			require.NoError(t, err)

			if tt.wantNone {
				assert.Nil(t, got.Coupon)
				assert.True(t, got.Discount.IsZero())
				assert.Empty(t, usage.increments, "no-result evaluation must not touch counters")
				return
			}

			require.NotNil(t, got.Coupon)
			assert.Equal(t, tt.wantCode, got.Coupon.Code)

			want := decimal.RequireFromString(tt.wantDiscount)
			assert.True(t, want.Equal(got.Discount), "expected discount %s, got %s", want, got.Discount)
			assert.Equal(t, tt.wantIncrements, usage.increments)
		})
	}
}

func TestPickerFirstOrderOnly(t *testing.T) {
	evalDay := date(2025, 6, 15)
	coupons := []Coupon{{
		Code:          "WELCOME",
		DiscountType:  DiscountPercent,
		DiscountValue: decimal.NewFromInt(20),
		StartDate:     date(2025, 1, 1),
		EndDate:       date(2025, 12, 31),
		Eligibility:   Rule{FirstOrderOnly: true},
	}}
	cart := Cart{Items: []CartItem{
		{ProductID: "p1", Category: "grocery", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
	}}

	p := NewPicker(&mockCatalog{coupons: coupons}, &mockUsage{},
		WithNow(func() time.Time { return evalDay }),
	)

	// Zero orders placed means first order.
	got, err := p.FindBest(context.Background(), UserContext{UserID: "new", OrdersPlaced: 0}, cart)
	require.NoError(t, err)
	require.NotNil(t, got.Coupon)
	assert.Equal(t, "WELCOME", got.Coupon.Code)

	got, err = p.FindBest(context.Background(), UserContext{UserID: "old", OrdersPlaced: 3}, cart)
	require.NoError(t, err)
	assert.Nil(t, got.Coupon)
}

func TestPickerUnlimitedCouponSkipsUsageLookup(t *testing.T) {
	evalDay := date(2025, 6, 15)
	coupons := []Coupon{{
		Code:          "NOLIMIT",
		DiscountType:  DiscountFlat,
		DiscountValue: decimal.NewFromInt(5),
		StartDate:     date(2025, 1, 1),
		EndDate:       date(2025, 12, 31),
	}}
	usage := &mockUsage{}

	p := NewPicker(&mockCatalog{coupons: coupons}, usage,
		WithNow(func() time.Time { return evalDay }),
	)

	cart := Cart{Items: []CartItem{{Category: "grocery", UnitPrice: decimal.NewFromInt(10), Quantity: 1}}}
	_, err := p.FindBest(context.Background(), UserContext{UserID: "u1", OrdersPlaced: 1}, cart)
	require.NoError(t, err)

	assert.Zero(t, usage.countCalls)
}

func TestPickerRepeatedEvaluationIsDeterministic(t *testing.T) {
	evalDay := date(2025, 6, 15)
	coupons := []Coupon{
		{Code: "BETA", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(15),
			StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31)},
		{Code: "ALPHA", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(15),
			StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31)},
	}
	cart := Cart{Items: []CartItem{{Category: "grocery", UnitPrice: decimal.NewFromInt(30), Quantity: 1}}}
	user := UserContext{UserID: "u1", OrdersPlaced: 2}

	p := NewPicker(&mockCatalog{coupons: coupons}, &mockUsage{},
		WithNow(func() time.Time { return evalDay }),
	)

	first, err := p.FindBest(context.Background(), user, cart)
	require.NoError(t, err)
	second, err := p.FindBest(context.Background(), user, cart)
	require.NoError(t, err)

	require.NotNil(t, first.Coupon)
	require.NotNil(t, second.Coupon)
	assert.Equal(t, "ALPHA", first.Coupon.Code)
	assert.Equal(t, first.Coupon.Code, second.Coupon.Code)
}

func TestPickerCatalogError(t *testing.T) {
	p := NewPicker(&mockCatalog{err: errors.New("boom")}, &mockUsage{})

	_, err := p.FindBest(context.Background(), UserContext{UserID: "u1"}, Cart{})
	require.Error(t, err)
}
