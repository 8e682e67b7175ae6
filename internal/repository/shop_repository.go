package repository

import (
	"context"
	"fmt"

	"marketplace/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// shopRepository implements the ShopRepository interface using PostgreSQL.
type shopRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShopRepository creates a new PostgreSQL-backed shop repository.
func NewShopRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShopRepository {
	return &shopRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shop").Logger(),
	}
}

// GetByIDs retrieves the shops with the given IDs.
func (r *shopRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Shop, error) {
	if len(ids) == 0 {
		return []model.Shop{}, nil
	}

	query := `
		SELECT id, name, email
		FROM shops
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query shops by IDs")
		return nil, fmt.Errorf("failed to query shops by IDs: %w", err)
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		var s model.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shop row")
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating shop rows")
		return nil, fmt.Errorf("error iterating shops: %w", err)
	}

	return shops, nil
}

// DeviceTokens returns the push tokens registered for a shop.
func (r *shopRepository) DeviceTokens(ctx context.Context, shopID string) ([]string, error) {
	query := `
		SELECT token
		FROM device_tokens
		WHERE shop_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		r.logger.Error().Err(err).Str("shop_id", shopID).Msg("failed to query device tokens")
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan device token row")
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating device token rows")
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}

	return tokens, nil
}
