package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name      string
		coupon    Coupon
		cartValue string
		want      string
	}{
		{
			name: "flat discount within cart value",
			coupon: Coupon{
				DiscountType:  DiscountFlat,
				DiscountValue: decimal.NewFromInt(10),
			},
			cartValue: "100",
			want:      "10",
		},
		{
			name: "flat discount clamped to cart value",
			coupon: Coupon{
				DiscountType:  DiscountFlat,
				DiscountValue: decimal.NewFromInt(10),
			},
			cartValue: "5",
			want:      "5",
		},
		{
			name: "flat discount ignores cap",
			coupon: Coupon{
				DiscountType:      DiscountFlat,
				DiscountValue:     decimal.NewFromInt(30),
				MaxDiscountAmount: decPtr("20"),
			},
			cartValue: "100",
			want:      "30",
		},
		{
			name: "percent discount without cap",
			coupon: Coupon{
				DiscountType:  DiscountPercent,
				DiscountValue: decimal.NewFromInt(10),
			},
			cartValue: "250",
			want:      "25",
		},
		{
			name: "percent discount capped",
			coupon: Coupon{
				DiscountType:      DiscountPercent,
				DiscountValue:     decimal.NewFromInt(50),
				MaxDiscountAmount: decPtr("20"),
			},
			cartValue: "100",
			want:      "20",
		},
		{
			name: "percent over 100 clamped to cart value",
			coupon: Coupon{
				DiscountType:  DiscountPercent,
				DiscountValue: decimal.NewFromInt(150),
			},
			cartValue: "80",
			want:      "80",
		},
		{
			name: "percent rounds to cents",
			coupon: Coupon{
				DiscountType:  DiscountPercent,
				DiscountValue: decimal.NewFromInt(15),
			},
			cartValue: "33.33",
			want:      "5",
		},
		{
			name: "discount type is case-folded before comparison",
			coupon: Coupon{
				DiscountType:  "percent",
				DiscountValue: decimal.NewFromInt(10),
			},
			cartValue: "100",
			want:      "10",
		},
		{
			// Unknown types compute to zero instead of erroring. Creation-time
			// validation rejects them, but catalogs loaded from elsewhere may
			// still contain one.
			name: "unknown discount type yields zero",
			coupon: Coupon{
				DiscountType:  "BOGOF",
				DiscountValue: decimal.NewFromInt(10),
			},
			cartValue: "100",
			want:      "0",
		},
		{
			name: "negative discount value floors at zero",
			coupon: Coupon{
				DiscountType:  DiscountFlat,
				DiscountValue: decimal.NewFromInt(-5),
			},
			cartValue: "100",
			want:      "0",
		},
		{
			name: "zero cart value yields zero",
			coupon: Coupon{
				DiscountType:  DiscountPercent,
				DiscountValue: decimal.NewFromInt(50),
			},
			cartValue: "0",
			want:      "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cartValue := decimal.RequireFromString(tt.cartValue)
			want := decimal.RequireFromString(tt.want)

			got := ComputeDiscount(&tt.coupon, cartValue)

			assert.True(t, want.Equal(got), "expected %s, got %s", want, got)
			assert.False(t, got.IsNegative(), "discount must not be negative")
			assert.True(t, got.LessThanOrEqual(cartValue), "discount must not exceed cart value")
		})
	}
}
