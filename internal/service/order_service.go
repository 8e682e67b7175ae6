package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/coupon"
	"marketplace/internal/model"
	"marketplace/internal/notification"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo  repository.OrderRepository
	couponRepo repository.CouponRepository
	validator  coupon.Validator
	notifier   Notifier
	now        func() time.Time
	logger     zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	validator coupon.Validator,
	notifier Notifier,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		couponRepo: couponRepo,
		validator:  validator,
		notifier:   notifier,
		now:        time.Now,
		logger:     logger.With().Str("service", "order").Logger(),
	}
}

// checkout is the fully computed set of rows for one order request.
type checkout struct {
	parent    model.Order
	subOrders []model.SubOrderDetail
	coupon    *model.CouponApplication
}

// CreateOrder validates the request, prices the cart, evaluates the coupon
// and writes every row in one transaction. Notifications go out after commit.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.CreateOrderResponse, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	var application *model.CouponApplication
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		code := strings.TrimSpace(*req.CouponCode)
		app, err := s.validator.Evaluate(ctx, code, req.CartItems)
		if err != nil {
			if model.IsCouponError(err) {
				s.logger.Warn().Str("coupon_code", code).Err(err).Msg("coupon rejected")
				return nil, err
			}
			s.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to evaluate coupon")
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		application = app
		s.logger.Debug().
			Str("coupon_code", code).
			Str("shop_id", app.ShopID).
			Str("discount", app.DiscountAmount.String()).
			Msg("coupon applied")
	}

	co := s.buildCheckout(req, application)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.persist(ctx, tx, co, req.UserID); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		if model.IsCouponError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", co.parent.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", co.parent.ID.String()).
		Str("group_id", co.parent.GroupID.String()).
		Int("sub_orders", len(co.subOrders)).
		Str("final_amount", co.parent.FinalAmount.String()).
		Msg("order created successfully")

	if s.notifier != nil {
		ev := notification.OrderPlaced{Parent: co.parent, SubOrders: co.subOrders}
		if err := s.notifier.OrderPlaced(ev); err != nil {
			s.logger.Warn().Err(err).Str("order_id", co.parent.ID.String()).Msg("order notifications not scheduled")
		}
	}

	return &model.CreateOrderResponse{
		Message:       "Order created successfully",
		ParentOrderID: co.parent.ID,
	}, nil
}

// buildCheckout prices the cart and lays out the parent order, sub-orders and
// line items. Unusable cart items are dropped here.
func (s *orderService) buildCheckout(req *model.OrderRequest, app *model.CouponApplication) *checkout {
	now := s.now().UTC()
	groupID := uuid.New()
	parentID := uuid.New()

	co := &checkout{coupon: app}
	grandTotal := decimal.Zero

	for _, group := range req.CartItems {
		shopID := group.ShopID
		sub := model.SubOrderDetail{
			Order: model.Order{
				ID:            uuid.New(),
				ParentOrderID: &parentID,
				GroupID:       groupID,
				UserID:        req.UserID,
				ShopID:        &shopID,
				Contact:       req.Contact,
				Status:        model.StatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		}

		for i, item := range group.Items {
			if !item.Usable() {
				s.logger.Warn().
					Str("shop_id", shopID).
					Int("item_index", i).
					Str("product_id", item.ProductID).
					Msg("skipping cart item with missing product, quantity or price")
				continue
			}
			sub.Items = append(sub.Items, model.OrderLineItem{
				ID:        uuid.New(),
				OrderID:   sub.ID,
				ProductID: item.ProductID,
				Quantity:  *item.Quantity,
				UnitPrice: *item.Price,
				Size:      orPlaceholder(item.Size),
				Color:     orPlaceholder(item.Color),
				ImageURL:  orPlaceholder(item.Image),
				CreatedAt: now,
			})
		}

		subtotal := group.Subtotal()
		sub.TotalAmount = subtotal
		sub.DiscountAmount = decimal.Zero
		if app != nil && app.ShopID == shopID {
			sub.DiscountAmount = coupon.Clamp(app.DiscountAmount, subtotal)
			sub.CouponID = &app.CouponID
		}
		sub.FinalAmount = subtotal.Sub(sub.DiscountAmount)

		grandTotal = grandTotal.Add(subtotal)
		co.subOrders = append(co.subOrders, sub)
	}

	discount := decimal.Zero
	var couponID *uuid.UUID
	if app != nil {
		discount = coupon.Clamp(app.DiscountAmount, grandTotal)
		couponID = &app.CouponID
	}

	co.parent = model.Order{
		ID:             parentID,
		GroupID:        groupID,
		UserID:         req.UserID,
		Contact:        req.Contact,
		TotalAmount:    grandTotal,
		DiscountAmount: discount,
		FinalAmount:    grandTotal.Sub(discount),
		CouponID:       couponID,
		Status:         model.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return co
}

// persist writes the checkout within tx. The coupon counter is incremented
// with a conditional update so concurrent checkouts cannot overshoot the
// usage limit.
func (s *orderService) persist(ctx context.Context, tx pgx.Tx, co *checkout, userID string) error {
	if err := s.orderRepo.CreateOrder(ctx, tx, &co.parent); err != nil {
		s.logger.Error().Err(err).Str("order_id", co.parent.ID.String()).Msg("failed to create parent order")
		return err
	}

	for i := range co.subOrders {
		sub := &co.subOrders[i]
		if err := s.orderRepo.CreateOrder(ctx, tx, &sub.Order); err != nil {
			s.logger.Error().Err(err).Str("order_id", sub.ID.String()).Msg("failed to create sub-order")
			return err
		}
		if len(sub.Items) == 0 {
			continue
		}
		if err := s.orderRepo.CreateLineItems(ctx, tx, sub.Items); err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", sub.ID.String()).
				Int("item_count", len(sub.Items)).
				Msg("failed to create line items")
			return err
		}
	}

	if co.coupon == nil {
		return nil
	}

	if err := s.couponRepo.Redeem(ctx, tx, co.coupon.CouponID); err != nil {
		s.logger.Warn().Err(err).Str("coupon_code", co.coupon.Code).Msg("coupon redemption failed")
		return err
	}

	usage := &model.CouponUsage{
		ID:             uuid.New(),
		CouponID:       co.coupon.CouponID,
		UserID:         userID,
		OrderID:        co.parent.ID,
		DiscountAmount: co.parent.DiscountAmount,
		UsedAt:         co.parent.CreatedAt,
	}
	if err := s.couponRepo.RecordUsage(ctx, tx, usage); err != nil {
		s.logger.Error().Err(err).Str("coupon_code", co.coupon.Code).Msg("failed to record coupon usage")
		return err
	}

	return nil
}

// GetByID retrieves the checkout an order belongs to. A sub-order ID resolves
// to its parent's checkout.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	orders, err := s.orderRepo.ListByGroup(ctx, order.GroupID)
	if err != nil {
		s.logger.Error().Err(err).Str("group_id", order.GroupID.String()).Msg("failed to list order group")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	detail := &model.OrderDetail{}
	subIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		if o.IsParent() {
			detail.Order = o
			continue
		}
		detail.SubOrders = append(detail.SubOrders, model.SubOrderDetail{Order: o})
		subIDs = append(subIDs, o.ID)
	}
	if detail.ID == uuid.Nil {
		s.logger.Error().Str("group_id", order.GroupID.String()).Msg("order group has no parent order")
		return nil, model.ErrOrderNotFound
	}

	if len(subIDs) > 0 {
		items, err := s.orderRepo.ListLineItems(ctx, subIDs)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to list line items")
			return nil, fmt.Errorf("failed to get order: %w", err)
		}

		byOrder := make(map[uuid.UUID][]model.OrderLineItem, len(subIDs))
		for _, item := range items {
			byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
		}
		for i := range detail.SubOrders {
			detail.SubOrders[i].Items = byOrder[detail.SubOrders[i].ID]
		}
	}

	return detail, nil
}

// GetGroup retrieves every order row of one checkout.
func (s *orderService) GetGroup(ctx context.Context, groupID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID.String()).Msg("failed to list order group")
		return nil, fmt.Errorf("failed to get order group: %w", err)
	}
	if len(orders) == 0 {
		return nil, model.ErrOrderNotFound
	}
	return orders, nil
}

// UpdateStatus moves a sub-order along its lifecycle.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.IsParent() {
		return nil, model.NewValidationError("status can only be changed on sub-orders")
	}

	if !order.Status.CanTransitionTo(status) {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("status transition rejected")
		return nil, model.ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, status); err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			return nil, model.ErrInvalidTransition
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(status)).
		Msg("order status updated")

	order.Status = status
	order.UpdatedAt = s.now().UTC()
	return order, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is required")
	}

	required := []struct {
		field string
		value string
	}{
		{"fullName", req.FullName},
		{"country", req.Country},
		{"streetAddressLine1", req.StreetAddressLine1},
		{"city", req.City},
		{"state", req.State},
		{"zipCode", req.ZipCode},
		{"phoneNumber", req.PhoneNumber},
		{"email", req.Email},
		{"userId", req.UserID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return model.NewValidationError(r.field + " is required")
		}
	}

	if !strings.Contains(req.Email, "@") {
		return model.NewValidationError("email is invalid")
	}

	if err := model.ValidateCart(req.CartItems); err != nil {
		s.logger.Warn().Err(err).Msg("cart rejected")
		return err
	}

	return nil
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return model.NotSelected
	}
	return v
}
