package service

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCouponValidator is a mock implementation of Validator.
type MockCouponValidator struct {
	mock.Mock
}

func (m *MockCouponValidator) Evaluate(ctx context.Context, code string, cart []model.ShopGroup) (*model.CouponApplication, error) {
	args := m.Called(ctx, code, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CouponApplication), args.Error(1)
}

func TestCouponService_Preview(t *testing.T) {
	cart := []model.ShopGroup{scenarioCart()}
	app := &model.CouponApplication{CouponID: uuid.New(), Code: "SAVE10", ShopID: "V1", DiscountAmount: d("30")}

	validator := new(MockCouponValidator)
	validator.On("Evaluate", mock.Anything, "SAVE10", cart).Return(app, nil)

	got, err := NewCouponService(validator, zerolog.Nop()).Preview(context.Background(), &model.CouponValidateRequest{
		CouponCode: " SAVE10 ",
		CartItems:  cart,
	})

	require.NoError(t, err)
	assert.Equal(t, app, got)
	validator.AssertExpectations(t)
}

func TestCouponService_Preview_Errors(t *testing.T) {
	cart := []model.ShopGroup{scenarioCart()}

	t.Run("missing code", func(t *testing.T) {
		validator := new(MockCouponValidator)

		_, err := NewCouponService(validator, zerolog.Nop()).Preview(context.Background(), &model.CouponValidateRequest{CartItems: cart})

		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("empty cart", func(t *testing.T) {
		validator := new(MockCouponValidator)

		_, err := NewCouponService(validator, zerolog.Nop()).Preview(context.Background(), &model.CouponValidateRequest{CouponCode: "X"})

		assert.ErrorIs(t, err, model.ErrEmptyCart)
	})

	t.Run("coupon error passes through", func(t *testing.T) {
		validator := new(MockCouponValidator)
		validator.On("Evaluate", mock.Anything, "X", cart).Return(nil, model.ErrCouponExpired)

		_, err := NewCouponService(validator, zerolog.Nop()).Preview(context.Background(), &model.CouponValidateRequest{CouponCode: "X", CartItems: cart})

		assert.ErrorIs(t, err, model.ErrCouponExpired)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		validator := new(MockCouponValidator)
		validator.On("Evaluate", mock.Anything, "X", cart).Return(nil, errors.New("db down"))

		_, err := NewCouponService(validator, zerolog.Nop()).Preview(context.Background(), &model.CouponValidateRequest{CouponCode: "X", CartItems: cart})

		require.Error(t, err)
		assert.False(t, model.IsCouponError(err))
	})
}
