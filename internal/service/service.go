package service

import (
	"context"

	"marketplace/internal/model"
	"marketplace/internal/notification"

	"github.com/google/uuid"
)

// OrderService defines operations for multi-vendor checkout and order
// lifecycle.
type OrderService interface {
	// CreateOrder splits the cart into a parent order and one sub-order per
	// shop, applying at most one coupon, in a single transaction.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.CreateOrderResponse, error)

	// GetByID retrieves the checkout the order belongs to, with sub-orders
	// and their line items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// GetGroup retrieves every order row sharing a group ID, parent first.
	GetGroup(ctx context.Context, groupID uuid.UUID) ([]model.Order, error)

	// UpdateStatus moves a sub-order to a new status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// CouponService defines read-only coupon operations.
type CouponService interface {
	// Preview evaluates a coupon against a cart without redeeming it.
	Preview(ctx context.Context, req *model.CouponValidateRequest) (*model.CouponApplication, error)
}

// ReportService defines vendor reporting operations.
type ReportService interface {
	// VendorReport aggregates a shop's delivered sub-orders.
	VendorReport(ctx context.Context, q model.ReportQuery) (*model.VendorReport, error)
}

// Notifier receives committed checkouts for best-effort delivery.
type Notifier interface {
	OrderPlaced(ev notification.OrderPlaced) error
}
