package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, parent_order_id, group_id, user_id, shop_id,
	full_name, country, street_address_line1, street_address_line2,
	city, state, zip_code, phone_number, email,
	total_amount, discount_amount, final_amount, coupon_id,
	status, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a parent order or sub-order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	c := order.Contact
	_, err := tx.Exec(ctx, query,
		order.ID, order.ParentOrderID, order.GroupID, order.UserID, order.ShopID,
		c.FullName, c.Country, c.StreetAddressLine1, c.StreetAddressLine2,
		c.City, c.State, c.ZipCode, c.PhoneNumber, c.Email,
		order.TotalAmount, order.DiscountAmount, order.FinalAmount, order.CouponID,
		order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Bool("parent", order.IsParent()).
		Msg("order created successfully")

	return nil
}

// CreateLineItems inserts line items within the provided transaction.
func (r *orderRepository) CreateLineItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_line_items (id, order_id, product_id, quantity, unit_price, size, color, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
			item.Size, item.Color, item.ImageURL, item.CreatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order line item")
			return fmt.Errorf("failed to create order line item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order line items created successfully")

	return nil
}

// GetByID retrieves a single order row.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// ListByGroup retrieves every order row of one checkout, parent first.
func (r *orderRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE group_id = $1
		ORDER BY parent_order_id NULLS FIRST, shop_id`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error().Err(err).Str("group_id", groupID.String()).Msg("failed to query order group")
		return nil, fmt.Errorf("failed to query order group: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListLineItems retrieves the line items of the given orders.
func (r *orderRepository) ListLineItems(ctx context.Context, orderIDs []uuid.UUID) ([]model.OrderLineItem, error) {
	if len(orderIDs) == 0 {
		return []model.OrderLineItem{}, nil
	}

	query := `
		SELECT id, order_id, product_id, quantity, unit_price, size, color, image_url, created_at
		FROM order_line_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, created_at, id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(orderIDs)).Msg("failed to query order line items")
		return nil, fmt.Errorf("failed to query order line items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderLineItem
	for rows.Next() {
		var item model.OrderLineItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice,
			&item.Size, &item.Color, &item.ImageURL, &item.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line item row")
			return nil, fmt.Errorf("failed to scan order line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line item rows")
		return nil, fmt.Errorf("error iterating order line items: %w", err)
	}

	return items, nil
}

// UpdateStatus moves an order from one status to another.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("order status changed concurrently")
		return model.ErrInvalidTransition
	}

	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	c := &o.Contact
	err := row.Scan(
		&o.ID, &o.ParentOrderID, &o.GroupID, &o.UserID, &o.ShopID,
		&c.FullName, &c.Country, &c.StreetAddressLine1, &c.StreetAddressLine2,
		&c.City, &c.State, &c.ZipCode, &c.PhoneNumber, &c.Email,
		&o.TotalAmount, &o.DiscountAmount, &o.FinalAmount, &o.CouponID,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
