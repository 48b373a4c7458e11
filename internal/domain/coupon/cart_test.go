package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		cart       Cart
		wantValue  string
		wantCount  int
		wantCats   []string
	}{
		{
			name:      "empty cart",
			cart:      Cart{},
			wantValue: "0",
			wantCount: 0,
			wantCats:  nil,
		},
		{
			name: "single item",
			cart: Cart{Items: []CartItem{
				{ProductID: "p1", Category: "grocery", UnitPrice: decimal.NewFromFloat(2.5), Quantity: 4},
			}},
			wantValue: "10",
			wantCount: 4,
			wantCats:  []string{"grocery"},
		},
		{
			name: "mixed categories sum value and count",
			cart: Cart{Items: []CartItem{
				{ProductID: "p1", Category: "electronics", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
				{ProductID: "p2", Category: "grocery", UnitPrice: decimal.NewFromFloat(1.25), Quantity: 8},
				{ProductID: "p3", Category: "grocery", UnitPrice: decimal.NewFromInt(5), Quantity: 2},
			}},
			wantValue: "120",
			wantCount: 11,
			wantCats:  []string{"electronics", "grocery"},
		},
		{
			name: "zero quantity contributes nothing to value",
			cart: Cart{Items: []CartItem{
				{ProductID: "p1", Category: "toys", UnitPrice: decimal.NewFromInt(50), Quantity: 0},
			}},
			wantValue: "0",
			wantCount: 0,
			wantCats:  []string{"toys"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Summarize(tt.cart)

			want, err := decimal.NewFromString(tt.wantValue)
			assert.NoError(t, err)
			assert.True(t, want.Equal(sum.Value), "expected value %s, got %s", want, sum.Value)
			assert.Equal(t, tt.wantCount, sum.ItemCount)

			assert.Len(t, sum.Categories, len(tt.wantCats))
			for _, c := range tt.wantCats {
				assert.Contains(t, sum.Categories, c)
			}
		})
	}
}

func TestCartSummaryHasAnyCategory(t *testing.T) {
	sum := Summarize(Cart{Items: []CartItem{
		{Category: "grocery", UnitPrice: decimal.NewFromInt(1), Quantity: 1},
		{Category: "dairy", UnitPrice: decimal.NewFromInt(1), Quantity: 1},
	}})

	assert.True(t, sum.HasAnyCategory([]string{"grocery"}))
	assert.True(t, sum.HasAnyCategory([]string{"electronics", "dairy"}))
	assert.False(t, sum.HasAnyCategory([]string{"electronics"}))
	assert.False(t, sum.HasAnyCategory(nil))
}
