package memory

import (
	"context"
	"sync"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
)

var _ coupon.UsageStore = (*UsageStore)(nil)

type usageKey struct {
	userID string
	code   string
}

// UsageStore is an in-memory per-(user, code) redemption counter. Increments
// are atomic under the store mutex, satisfying the single-key atomicity the
// picker requires.
type UsageStore struct {
	mu     sync.Mutex
	counts map[usageKey]int
}

// NewUsageStore creates an empty in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{counts: make(map[usageKey]int)}
}

// Count returns the recorded redemptions for (userID, code), zero when absent.
func (s *UsageStore) Count(_ context.Context, userID, code string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[usageKey{userID: userID, code: code}], nil
}

// Increment adds one redemption for (userID, code) and returns the new count.
func (s *UsageStore) Increment(_ context.Context, userID, code string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{userID: userID, code: code}
	s.counts[key]++
	return s.counts[key], nil
}
