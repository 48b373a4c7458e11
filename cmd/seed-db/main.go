// Command seed-db runs migrations and loads a sample coupon catalog from a
// JSON file. Re-runs are idempotent: existing codes are skipped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
	"github.com/xenking/coupon-engine/internal/storage/postgres"
)

type couponJSON struct {
	Code              string           `json:"code"`
	Description       string           `json:"description"`
	DiscountType      string           `json:"discountType"`
	DiscountValue     decimal.Decimal  `json:"discountValue"`
	MaxDiscountAmount *decimal.Decimal `json:"maxDiscountAmount"`
	StartDate         string           `json:"startDate"`
	EndDate           string           `json:"endDate"`
	UsageLimitPerUser *int             `json:"usageLimitPerUser"`
	Eligibility       struct {
		AllowedUserTiers     []string         `json:"allowedUserTiers"`
		MinLifetimeSpend     *decimal.Decimal `json:"minLifetimeSpend"`
		MinOrdersPlaced      *int             `json:"minOrdersPlaced"`
		FirstOrderOnly       bool             `json:"firstOrderOnly"`
		AllowedCountries     []string         `json:"allowedCountries"`
		MinCartValue         *decimal.Decimal `json:"minCartValue"`
		MinItemsCount        *int             `json:"minItemsCount"`
		ApplicableCategories []string         `json:"applicableCategories"`
		ExcludedCategories   []string         `json:"excludedCategories"`
	} `json:"eligibility"`
}

func main() {
	var (
		databaseURL string
		couponsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&couponsFile, "coupons-file", "db/seed/coupons.json", "path to coupons JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, couponsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, couponsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCoupons(ctx, postgres.NewCouponStore(pool), couponsFile); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedCoupons(ctx context.Context, store *postgres.CouponStore, couponsFile string) error {
	slog.Info("reading coupons file", slog.String("path", couponsFile))

	data, err := os.ReadFile(couponsFile)
	if err != nil {
		return errors.Wrap(err, "read coupons file")
	}

	var entries []couponJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse coupons JSON")
	}

	slog.Info("inserting coupons", slog.Int("count", len(entries)))

	for _, e := range entries {
		c, err := toCoupon(e)
		if err != nil {
			return errors.Wrapf(err, "coupon %s", e.Code)
		}

		switch err := store.Insert(ctx, c); {
		case errors.Is(err, coupon.ErrDuplicateCode):
			slog.Info("coupon already exists, skipping", slog.String("code", c.Code))
		case err != nil:
			return errors.Wrapf(err, "insert coupon %s", c.Code)
		default:
			slog.Info("inserted coupon", slog.String("code", c.Code), slog.String("description", c.Description))
		}
	}

	return nil
}

func toCoupon(e couponJSON) (*coupon.Coupon, error) {
	start, err := time.Parse(time.DateOnly, e.StartDate)
	if err != nil {
		return nil, errors.Wrap(err, "parse startDate")
	}
	end, err := time.Parse(time.DateOnly, e.EndDate)
	if err != nil {
		return nil, errors.Wrap(err, "parse endDate")
	}

	c := &coupon.Coupon{
		Code:              e.Code,
		Description:       e.Description,
		DiscountType:      coupon.DiscountType(e.DiscountType),
		DiscountValue:     e.DiscountValue,
		MaxDiscountAmount: e.MaxDiscountAmount,
		StartDate:         start,
		EndDate:           end,
		UsageLimitPerUser: e.UsageLimitPerUser,
		Eligibility: coupon.Rule{
			AllowedUserTiers:     e.Eligibility.AllowedUserTiers,
			MinLifetimeSpend:     e.Eligibility.MinLifetimeSpend,
			MinOrdersPlaced:      e.Eligibility.MinOrdersPlaced,
			FirstOrderOnly:       e.Eligibility.FirstOrderOnly,
			AllowedCountries:     e.Eligibility.AllowedCountries,
			MinCartValue:         e.Eligibility.MinCartValue,
			MinItemsCount:        e.Eligibility.MinItemsCount,
			ApplicableCategories: e.Eligibility.ApplicableCategories,
			ExcludedCategories:   e.Eligibility.ExcludedCategories,
		},
	}

	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
