package coupon

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/model"

	"github.com/rs/zerolog"
)

// validator implements Validator on top of the coupon store.
type validator struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// Option customises a validator.
type Option func(*validator)

// WithClock overrides the time source used for validity window checks.
func WithClock(now func() time.Time) Option {
	return func(v *validator) {
		v.now = now
	}
}

// NewValidator creates a new coupon validator.
func NewValidator(store Store, logger zerolog.Logger, opts ...Option) Validator {
	v := &validator{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Evaluate checks the coupon against the cart and computes its discount.
func (v *validator) Evaluate(ctx context.Context, code string, cart []model.ShopGroup) (*model.CouponApplication, error) {
	c, err := v.store.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if c == nil {
		v.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
		return nil, model.ErrCouponNotFound
	}

	now := v.now()
	if now.Before(c.StartDate) {
		v.logger.Debug().
			Str("coupon_code", code).
			Time("start_date", c.StartDate).
			Msg("coupon not started")
		return nil, model.ErrCouponNotStarted
	}
	if now.After(c.EndDate) {
		v.logger.Debug().
			Str("coupon_code", code).
			Time("end_date", c.EndDate).
			Msg("coupon expired")
		return nil, model.ErrCouponExpired
	}

	if c.Exhausted() {
		v.logger.Debug().
			Str("coupon_code", code).
			Int("usage_count", c.UsageCount).
			Int("usage_limit", *c.UsageLimit).
			Msg("coupon exhausted")
		return nil, model.ErrCouponExhausted
	}

	group, ok := findShop(cart, c.ShopID)
	if !ok {
		v.logger.Debug().
			Str("coupon_code", code).
			Str("shop_id", c.ShopID).
			Msg("coupon shop not in cart")
		return nil, model.ErrVendorMismatch
	}

	subtotal := group.Subtotal()
	if subtotal.LessThan(c.MinOrderValue) {
		v.logger.Debug().
			Str("coupon_code", code).
			Str("subtotal", subtotal.String()).
			Str("min_order_value", c.MinOrderValue.String()).
			Msg("shop subtotal below coupon minimum")
		return nil, model.ErrBelowMinimum
	}

	discount := Discount(c, subtotal)

	v.logger.Debug().
		Str("coupon_code", code).
		Str("shop_id", c.ShopID).
		Str("discount", discount.String()).
		Msg("coupon validated successfully")

	return &model.CouponApplication{
		CouponID:       c.ID,
		Code:           c.Code,
		ShopID:         c.ShopID,
		DiscountAmount: discount,
	}, nil
}

func findShop(cart []model.ShopGroup, shopID string) (model.ShopGroup, bool) {
	for _, g := range cart {
		if g.ShopID == shopID {
			return g, true
		}
	}
	return model.ShopGroup{}, false
}
