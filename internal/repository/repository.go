package repository

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a parent order or sub-order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateLineItems inserts line items within the provided transaction.
	CreateLineItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error

	// GetByID retrieves a single order row. Returns nil, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByGroup retrieves every order row of one checkout, parent first.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Order, error)

	// ListLineItems retrieves the line items of the given orders.
	ListLineItems(ctx context.Context, orderIDs []uuid.UUID) ([]model.OrderLineItem, error)

	// UpdateStatus moves an order from one status to another. It fails with
	// model.ErrInvalidTransition when the row is no longer in status from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its code. Returns nil, nil when absent.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Redeem increments the usage counter if the limit allows it. It fails
	// with model.ErrCouponExhausted when no usage is left.
	Redeem(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error

	// RecordUsage appends a coupon usage audit record.
	RecordUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error

	// Upsert inserts or updates coupon definitions by code, leaving usage
	// counters untouched. Returns the number of rows written.
	Upsert(ctx context.Context, coupons []model.Coupon) (int, error)
}

// ShopRepository defines lookups of vendor contact data.
type ShopRepository interface {
	// GetByIDs retrieves the shops with the given IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Shop, error)

	// DeviceTokens returns the push tokens registered for a shop.
	DeviceTokens(ctx context.Context, shopID string) ([]string, error)
}

// ReportRepository defines the read-only queries behind vendor reports.
type ReportRepository interface {
	// DeliveredLines returns the line items of the shop's delivered
	// sub-orders together with their catalog pricing.
	DeliveredLines(ctx context.Context, q model.ReportQuery) ([]model.DeliveredLine, error)
}
