package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon by its code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, shop_id, discount_type, discount_value, min_order_value,
		       start_date, end_date, usage_limit, usage_count, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.ShopID, &c.DiscountType, &c.DiscountValue, &c.MinOrderValue,
		&c.StartDate, &c.EndDate, &c.UsageLimit, &c.UsageCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// Redeem increments the usage counter if the limit allows it. The check and
// the increment are one statement, so concurrent checkouts cannot both take
// the last use.
func (r *couponRepository) Redeem(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error {
	query := `
		UPDATE coupons
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)
	`

	tag, err := tx.Exec(ctx, query, couponID)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to redeem coupon")
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("coupon_id", couponID.String()).Msg("coupon usage limit reached at redemption")
		return model.ErrCouponExhausted
	}

	return nil
}

// RecordUsage appends a coupon usage audit record.
func (r *couponRepository) RecordUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (id, coupon_id, user_id, order_id, discount_amount, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		usage.ID, usage.CouponID, usage.UserID, usage.OrderID, usage.DiscountAmount, usage.UsedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("coupon_id", usage.CouponID.String()).
			Str("order_id", usage.OrderID.String()).
			Msg("failed to record coupon usage")
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}

	return nil
}

// Upsert inserts or updates coupon definitions by code.
func (r *couponRepository) Upsert(ctx context.Context, coupons []model.Coupon) (int, error) {
	if len(coupons) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO coupons (id, code, shop_id, discount_type, discount_value, min_order_value,
		                     start_date, end_date, usage_limit, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, NOW(), NOW())
		ON CONFLICT (code) DO UPDATE SET
			shop_id = EXCLUDED.shop_id,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			min_order_value = EXCLUDED.min_order_value,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			usage_limit = EXCLUDED.usage_limit,
			updated_at = NOW()
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, c := range coupons {
		batch.Queue(query,
			c.ID, c.Code, c.ShopID, c.DiscountType, c.DiscountValue, c.MinOrderValue,
			c.StartDate, c.EndDate, c.UsageLimit,
		)
	}

	results := tx.SendBatch(ctx, batch)
	written := 0
	for i := 0; i < len(coupons); i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			r.logger.Error().Err(err).Str("coupon_code", coupons[i].Code).Msg("failed to upsert coupon")
			return 0, fmt.Errorf("failed to upsert coupon %s: %w", coupons[i].Code, err)
		}
		written += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit coupon upsert")
		return 0, fmt.Errorf("failed to commit coupon upsert: %w", err)
	}

	r.logger.Info().Int("count", written).Msg("coupons upserted")

	return written, nil
}
