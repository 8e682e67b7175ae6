package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order row.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
	StatusReturn    OrderStatus = "return"
)

// Placeholder stored for optional line item attributes the client omitted.
const NotSelected = "N/A"

// statusTransitions lists the statuses each status may move to.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {StatusReturn},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled, StatusReturn:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Contact holds the customer's contact and shipping details copied onto every
// order row of a checkout.
type Contact struct {
	FullName           string `json:"fullName"`
	Country            string `json:"country"`
	StreetAddressLine1 string `json:"streetAddressLine1"`
	StreetAddressLine2 string `json:"streetAddressLine2,omitempty"`
	City               string `json:"city"`
	State              string `json:"state"`
	ZipCode            string `json:"zipCode"`
	PhoneNumber        string `json:"phoneNumber"`
	Email              string `json:"email"`
}

// Order is either a parent order (ParentOrderID nil, ShopID nil) spanning a
// whole checkout or a per-shop sub-order referencing its parent.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ParentOrderID  *uuid.UUID      `json:"parentOrderId,omitempty" db:"parent_order_id"`
	GroupID        uuid.UUID       `json:"groupId" db:"group_id"`
	UserID         string          `json:"userId" db:"user_id"`
	ShopID         *string         `json:"shopId,omitempty" db:"shop_id"`
	Contact        Contact         `json:"contact"`
	TotalAmount    decimal.Decimal `json:"totalAmount" db:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"finalAmount" db:"final_amount"`
	CouponID       *uuid.UUID      `json:"couponId,omitempty" db:"coupon_id"`
	Status         OrderStatus     `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsParent reports whether the order is the checkout-level record.
func (o *Order) IsParent() bool {
	return o.ParentOrderID == nil
}

// OrderLineItem is a snapshot of one product within a sub-order.
type OrderLineItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Size      string          `json:"size" db:"size"`
	Color     string          `json:"color" db:"color"`
	ImageURL  string          `json:"image" db:"image_url"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// LineTotal returns unit price × quantity.
func (i OrderLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Contact
	UserID     string      `json:"userId"`
	CartItems  []ShopGroup `json:"cartItems"`
	CouponCode *string     `json:"couponCode,omitempty"`
}

// ShopGroup is the slice of a cart belonging to one shop.
type ShopGroup struct {
	ShopID string     `json:"shopId"`
	Items  []CartItem `json:"items"`
}

// CartItem is a single product entry of a cart. Pointer fields stay nil when
// the client omitted them.
type CartItem struct {
	ProductID string           `json:"id"`
	Quantity  *int             `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	Size      string           `json:"size,omitempty"`
	Color     string           `json:"color,omitempty"`
	Image     string           `json:"image,omitempty"`
}

// Usable reports whether the item carries everything needed to be persisted.
func (c CartItem) Usable() bool {
	return c.ProductID != "" &&
		c.Quantity != nil && *c.Quantity > 0 &&
		c.Price != nil && !c.Price.IsNegative()
}

// LineTotal returns price × quantity, or zero for unusable items.
func (c CartItem) LineTotal() decimal.Decimal {
	if !c.Usable() {
		return decimal.Zero
	}
	return c.Price.Mul(decimal.NewFromInt(int64(*c.Quantity)))
}

// Subtotal sums the line totals of every usable item in the group.
func (g ShopGroup) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range g.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (g ShopGroup) hasUsableItem() bool {
	for _, item := range g.Items {
		if item.Usable() {
			return true
		}
	}
	return false
}

// CreateOrderResponse is returned after a successful checkout.
type CreateOrderResponse struct {
	Message       string    `json:"message"`
	ParentOrderID uuid.UUID `json:"parentOrderId"`
}

// SubOrderDetail is a sub-order together with its line items.
type SubOrderDetail struct {
	Order
	Items []OrderLineItem `json:"items"`
}

// OrderDetail is a parent order with every sub-order of its checkout.
type OrderDetail struct {
	Order
	SubOrders []SubOrderDetail `json:"subOrders"`
}

// StatusUpdateRequest is the payload for changing a sub-order's status.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// ValidateCart checks the structural rules shared by checkout and coupon
// preview. Every group needs a shop ID and at least one usable item, no
// shop may appear twice, and prices are whole cents.
func ValidateCart(groups []ShopGroup) error {
	if len(groups) == 0 {
		return ErrEmptyCart
	}

	seen := make(map[string]struct{}, len(groups))
	for i, g := range groups {
		if g.ShopID == "" {
			return NewValidationError(fmt.Sprintf("cartItems[%d]: shopId is required", i))
		}
		if _, dup := seen[g.ShopID]; dup {
			return NewValidationError(fmt.Sprintf("cartItems[%d]: shop %s appears more than once", i, g.ShopID))
		}
		seen[g.ShopID] = struct{}{}

		if len(g.Items) == 0 || !g.hasUsableItem() {
			return ErrEmptyCart
		}

		for j, item := range g.Items {
			if item.Price != nil && !item.Price.Equal(item.Price.Round(2)) {
				return NewValidationError(fmt.Sprintf("cartItems[%d].items[%d]: price has more than 2 decimal places", i, j))
			}
		}
	}

	return nil
}
