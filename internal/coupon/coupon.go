package coupon

import (
	"context"

	"marketplace/internal/model"
)

// Validator evaluates a coupon code against a cart.
type Validator interface {
	// Evaluate checks the coupon's validity window, usage limit, shop scope
	// and minimum order value, and computes the discount it grants on its
	// shop's share of the cart. It never mutates stored state.
	Evaluate(ctx context.Context, code string, cart []model.ShopGroup) (*model.CouponApplication, error)
}

// Store is the read side of coupon persistence used by the validator.
type Store interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
}

// Writer is the write side of coupon persistence used by the importer.
type Writer interface {
	Upsert(ctx context.Context, coupons []model.Coupon) (int, error)
}

// Loader defines the interface for loading coupon definition files.
type Loader interface {
	// Load reads a gzipped CSV file of coupon definitions.
	Load(ctx context.Context, filePath string) ([]model.Coupon, error)
}
