// Package memory provides mutex-guarded in-memory implementations of the
// catalog and usage stores. They back unit tests and the service's
// database-free mode; state lives for the process lifetime only.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
)

var _ coupon.Catalog = (*Catalog)(nil)

// Catalog is an in-memory coupon catalog keyed by normalized code.
type Catalog struct {
	mu      sync.RWMutex
	coupons map[string]coupon.Coupon
}

// NewCatalog creates an empty in-memory catalog.
func NewCatalog() *Catalog {
	return &Catalog{coupons: make(map[string]coupon.Coupon)}
}

// GetByCode returns the coupon stored under the normalized code, or
// coupon.ErrNotFound.
func (c *Catalog) GetByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored, ok := c.coupons[coupon.NormalizeCode(code)]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return &stored, nil
}

// Insert stores a new coupon. Returns coupon.ErrDuplicateCode when the
// normalized code is already present; the catalog is left unchanged.
func (c *Catalog) Insert(_ context.Context, cp *coupon.Coupon) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.coupons[cp.Code]; exists {
		return coupon.ErrDuplicateCode
	}
	c.coupons[cp.Code] = *cp
	return nil
}

// ListAll returns a snapshot of every stored coupon.
func (c *Catalog) ListAll(_ context.Context) ([]coupon.Coupon, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]coupon.Coupon, 0, len(c.coupons))
	for _, cp := range c.coupons {
		out = append(out, cp)
	}
	return out, nil
}
