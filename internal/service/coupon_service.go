package service

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/coupon"
	"marketplace/internal/model"

	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	validator coupon.Validator
	logger    zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(validator coupon.Validator, logger zerolog.Logger) CouponService {
	return &couponService{
		validator: validator,
		logger:    logger.With().Str("service", "coupon").Logger(),
	}
}

func (s *couponService) Preview(ctx context.Context, req *model.CouponValidateRequest) (*model.CouponApplication, error) {
	if req == nil || strings.TrimSpace(req.CouponCode) == "" {
		return nil, model.NewValidationError("couponCode is required")
	}
	if err := model.ValidateCart(req.CartItems); err != nil {
		return nil, err
	}

	app, err := s.validator.Evaluate(ctx, strings.TrimSpace(req.CouponCode), req.CartItems)
	if err != nil {
		if model.IsCouponError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("coupon_code", req.CouponCode).Msg("failed to evaluate coupon")
		return nil, fmt.Errorf("failed to validate coupon: %w", err)
	}
	return app, nil
}
