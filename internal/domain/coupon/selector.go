package coupon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Candidate pairs a coupon that survived every filter stage with its
// computed discount.
type Candidate struct {
	Coupon   *Coupon
	Discount decimal.Decimal
}

// Compare orders candidates for selection. It returns a negative value when
// a ranks before b, positive when after, and zero only for identical
// tie-break tuples. The order is lexicographic over:
//
//  1. discount amount, descending
//  2. end date, ascending
//  3. code, ascending byte order
//
// Because code is a unique catalog key, this is a strict total order over
// any candidate set drawn from one catalog, which makes selection
// deterministic even under adversarial ties on the first two keys.
func Compare(a, b Candidate) int {
	if cmp := b.Discount.Cmp(a.Discount); cmp != 0 {
		return cmp
	}
	ae, be := DateOf(a.Coupon.EndDate), DateOf(b.Coupon.EndDate)
	if !ae.Equal(be) {
		if ae.Before(be) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Coupon.Code, b.Coupon.Code)
}

// SelectBest picks the single best candidate under Compare. The second
// return value is false when candidates is empty.
func SelectBest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if Compare(c, best) < 0 {
			best = c
		}
	}
	return best, true
}
