package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
)

var _ coupon.UsageStore = (*UsageStore)(nil)

// UsageStore implements coupon.UsageStore backed by PostgreSQL.
type UsageStore struct {
	pool *pgxpool.Pool
}

// NewUsageStore returns a UsageStore that uses the given pool.
func NewUsageStore(pool *pgxpool.Pool) *UsageStore {
	return &UsageStore{pool: pool}
}

// Count returns the recorded redemptions for (userID, code). Absent rows
// count as zero.
func (s *UsageStore) Count(ctx context.Context, userID, code string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT usage_count FROM coupon_usage WHERE user_id = $1 AND code = $2`,
		userID, code,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "count usage for %q", code)
	}
	return count, nil
}

// Increment adds one redemption for (userID, code) and returns the new
// count. The upsert executes as a single statement, so concurrent
// redemptions of the same key serialize on the row and never lose updates.
func (s *UsageStore) Increment(ctx context.Context, userID, code string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO coupon_usage (user_id, code, usage_count, last_used_at)
		 VALUES ($1, $2, 1, now())
		 ON CONFLICT (user_id, code)
		 DO UPDATE SET usage_count = coupon_usage.usage_count + 1, last_used_at = now()
		 RETURNING usage_count`,
		userID, code,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrapf(err, "increment usage for %q", code)
	}
	return count, nil
}
