package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
)

var _ coupon.Catalog = (*CouponStore)(nil)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

const couponColumns = `
	code, description, discount_type, discount_value, max_discount_amount,
	start_date, end_date, usage_limit_per_user,
	allowed_user_tiers, min_lifetime_spend, min_orders_placed, first_order_only,
	allowed_countries, min_cart_value, min_items_count,
	applicable_categories, excluded_categories`

// CouponStore implements coupon.Catalog backed by PostgreSQL. Reads run
// against the pool directly, so concurrent evaluations never block each
// other.
type CouponStore struct {
	pool *pgxpool.Pool
}

// NewCouponStore returns a CouponStore that uses the given pool.
func NewCouponStore(pool *pgxpool.Pool) *CouponStore {
	return &CouponStore{pool: pool}
}

// GetByCode looks up a coupon by its normalized code.
// Returns coupon.ErrNotFound when no such coupon exists.
func (s *CouponStore) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT`+couponColumns+` FROM coupons WHERE code = $1`,
		coupon.NormalizeCode(code),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "query coupon %q", code)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrapf(err, "scan coupon %q", code)
	}
	return &c, nil
}

// Insert stores a new coupon. The code column carries a unique constraint;
// a violation maps to coupon.ErrDuplicateCode and leaves the catalog
// unchanged.
func (s *CouponStore) Insert(ctx context.Context, c *coupon.Coupon) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO coupons (`+couponColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.Code,
		c.Description,
		string(c.DiscountType),
		c.DiscountValue,
		c.MaxDiscountAmount,
		c.StartDate,
		c.EndDate,
		c.UsageLimitPerUser,
		c.Eligibility.AllowedUserTiers,
		c.Eligibility.MinLifetimeSpend,
		c.Eligibility.MinOrdersPlaced,
		c.Eligibility.FirstOrderOnly,
		c.Eligibility.AllowedCountries,
		c.Eligibility.MinCartValue,
		c.Eligibility.MinItemsCount,
		c.Eligibility.ApplicableCategories,
		c.Eligibility.ExcludedCategories,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return coupon.ErrDuplicateCode
		}
		return errors.Wrapf(err, "insert coupon %q", c.Code)
	}
	return nil
}

// ListAll returns the full catalog snapshot ordered by code.
func (s *CouponStore) ListAll(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT`+couponColumns+` FROM coupons ORDER BY code`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query coupons")
	}

	coupons, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, errors.Wrap(err, "scan coupons")
	}
	return coupons, nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
	)
	err := row.Scan(
		&c.Code,
		&c.Description,
		&discountType,
		&c.DiscountValue,
		&c.MaxDiscountAmount,
		&c.StartDate,
		&c.EndDate,
		&c.UsageLimitPerUser,
		&c.Eligibility.AllowedUserTiers,
		&c.Eligibility.MinLifetimeSpend,
		&c.Eligibility.MinOrdersPlaced,
		&c.Eligibility.FirstOrderOnly,
		&c.Eligibility.AllowedCountries,
		&c.Eligibility.MinCartValue,
		&c.Eligibility.MinItemsCount,
		&c.Eligibility.ApplicableCategories,
		&c.Eligibility.ExcludedCategories,
	)
	c.DiscountType = coupon.DiscountType(discountType)
	return c, err
}
