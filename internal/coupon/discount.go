package coupon

import (
	"marketplace/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Discount computes what the coupon takes off a shop subtotal. Percentage
// coupons are rounded to cents; flat coupons apply once per order, not per
// unit. The result is clamped to [0, subtotal].
func Discount(c *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var raw decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		raw = subtotal.Mul(c.DiscountValue).Div(hundred).Round(2)
	case model.DiscountFlat:
		raw = c.DiscountValue
	default:
		raw = decimal.Zero
	}
	return Clamp(raw, subtotal)
}

// Clamp bounds a discount to [0, subtotal]. Clamp(Clamp(d, s), s) == Clamp(d, s).
func Clamp(discount, subtotal decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() || subtotal.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
