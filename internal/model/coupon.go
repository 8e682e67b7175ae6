package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFlat
}

// Coupon is a vendor-owned discount code.
type Coupon struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Code          string          `json:"code" db:"code"`
	ShopID        string          `json:"shopId" db:"shop_id"`
	DiscountType  DiscountType    `json:"discountType" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discountValue" db:"discount_value"`
	MinOrderValue decimal.Decimal `json:"minOrderValue" db:"min_order_value"`
	StartDate     time.Time       `json:"startDate" db:"start_date"`
	EndDate       time.Time       `json:"endDate" db:"end_date"`
	UsageLimit    *int            `json:"usageLimit,omitempty" db:"usage_limit"`
	UsageCount    int             `json:"usageCount" db:"usage_count"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// Exhausted reports whether the usage counter has reached a non-null limit.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

// CouponUsage is the append-only record of a coupon consumed by an order.
type CouponUsage struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CouponID       uuid.UUID       `json:"couponId" db:"coupon_id"`
	UserID         string          `json:"userId" db:"user_id"`
	OrderID        uuid.UUID       `json:"orderId" db:"order_id"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	UsedAt         time.Time       `json:"usedAt" db:"used_at"`
}

// CouponApplication is the outcome of evaluating a coupon against a cart.
type CouponApplication struct {
	CouponID       uuid.UUID       `json:"couponId"`
	Code           string          `json:"code"`
	ShopID         string          `json:"shopId"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// CouponValidateRequest is the payload of the coupon preview endpoint.
type CouponValidateRequest struct {
	CouponCode string      `json:"couponCode"`
	CartItems  []ShopGroup `json:"cartItems"`
}
