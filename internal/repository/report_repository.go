package repository

import (
	"context"
	"fmt"

	"marketplace/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// reportRepository implements the ReportRepository interface using PostgreSQL.
type reportRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "report").Logger(),
	}
}

// DeliveredLines returns the line items of the shop's delivered sub-orders in
// [From, To) together with the matching color variant and the product's size
// list. A sub-order without items yields one zero-quantity row so it is still
// counted.
func (r *reportRepository) DeliveredLines(ctx context.Context, q model.ReportQuery) ([]model.DeliveredLine, error) {
	unit := q.Granularity.TruncUnit()
	if unit == "" {
		unit = "day"
	}

	query := `
		SELECT o.id::text, date_trunc($4::text, o.created_at),
		       COALESCE(li.product_id, ''), COALESCE(li.quantity, 0),
		       COALESCE(li.size, ''), COALESCE(li.color, ''),
		       cv.price, cv.expense, p.sizes
		FROM orders o
		LEFT JOIN order_line_items li ON li.order_id = o.id
		LEFT JOIN product_color_variants cv ON cv.product_id = li.product_id AND cv.color = li.color
		LEFT JOIN products p ON p.id = li.product_id
		WHERE o.shop_id = $1
		  AND o.parent_order_id IS NOT NULL
		  AND o.status = 'delivered'
		  AND ($2::timestamptz IS NULL OR o.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR o.created_at < $3)
		ORDER BY o.created_at, o.id
	`

	rows, err := r.pool.Query(ctx, query, q.ShopID, q.From, q.To, unit)
	if err != nil {
		r.logger.Error().Err(err).Str("shop_id", q.ShopID).Msg("failed to query delivered lines")
		return nil, fmt.Errorf("failed to query delivered lines: %w", err)
	}
	defer rows.Close()

	var lines []model.DeliveredLine
	for rows.Next() {
		var l model.DeliveredLine
		err := rows.Scan(
			&l.OrderID, &l.Bucket,
			&l.ProductID, &l.Quantity, &l.Size, &l.Color,
			&l.ColorPrice, &l.ColorExpense, &l.SizesJSON,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan delivered line row")
			return nil, fmt.Errorf("failed to scan delivered line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating delivered line rows")
		return nil, fmt.Errorf("error iterating delivered lines: %w", err)
	}

	r.logger.Debug().
		Str("shop_id", q.ShopID).
		Int("count", len(lines)).
		Msg("delivered lines loaded")

	return lines, nil
}
