package repository

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/database"
	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema
// and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func seedShop(t *testing.T, pool *pgxpool.Pool, id, email string, tokens ...string) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, `INSERT INTO shops (id, name, email) VALUES ($1, $2, $3)`, id, "Shop "+id, email)
	require.NoError(t, err)
	for _, token := range tokens {
		_, err := pool.Exec(ctx, `INSERT INTO device_tokens (shop_id, token) VALUES ($1, $2)`, id, token)
		require.NoError(t, err)
	}
}

func testCoupon(code, shopID string, limit *int) model.Coupon {
	return model.Coupon{
		ID:            uuid.New(),
		Code:          code,
		ShopID:        shopID,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: decimal.Zero,
		StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		UsageLimit:    limit,
	}
}

func testContact() model.Contact {
	return model.Contact{
		FullName:           "Ada Buyer",
		Country:            "NG",
		StreetAddressLine1: "1 Market Road",
		City:               "Lagos",
		State:              "LA",
		ZipCode:            "100001",
		PhoneNumber:        "+2348000000000",
		Email:              "ada@example.com",
	}
}

// testCheckout builds a parent order with one sub-order per shop, all in
// status pending and created at the given time.
func testCheckout(createdAt time.Time, shopIDs ...string) (model.Order, []model.Order) {
	groupID := uuid.New()
	parent := model.Order{
		ID:             uuid.New(),
		GroupID:        groupID,
		UserID:         "user-1",
		Contact:        testContact(),
		TotalAmount:    decimal.Zero,
		DiscountAmount: decimal.Zero,
		FinalAmount:    decimal.Zero,
		Status:         model.StatusPending,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}

	subs := make([]model.Order, 0, len(shopIDs))
	for _, shopID := range shopIDs {
		sub := parent
		sub.ID = uuid.New()
		sub.ParentOrderID = &parent.ID
		sub.ShopID = &shopID
		sub.TotalAmount = decimal.NewFromInt(100)
		sub.FinalAmount = decimal.NewFromInt(100)
		parent.TotalAmount = parent.TotalAmount.Add(sub.TotalAmount)
		parent.FinalAmount = parent.FinalAmount.Add(sub.FinalAmount)
		subs = append(subs, sub)
	}

	return parent, subs
}

// insertCheckout writes the parent, its sub-orders and the given line items
// in one committed transaction.
func insertCheckout(t *testing.T, repo OrderRepository, parent model.Order, subs []model.Order, items []model.OrderLineItem) {
	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	require.NoError(t, repo.CreateOrder(ctx, tx, &parent))
	for i := range subs {
		require.NoError(t, repo.CreateOrder(ctx, tx, &subs[i]))
	}
	require.NoError(t, repo.CreateLineItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))
}

func lineItem(orderID uuid.UUID, productID string, qty int, price int64, size, color string) model.OrderLineItem {
	return model.OrderLineItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(price),
		Size:      size,
		Color:     color,
		ImageURL:  model.NotSelected,
		CreatedAt: time.Now().UTC(),
	}
}
