package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"marketplace/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application
// schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedMarketplace inserts two shops with their catalog and one coupon per shop.
//
//	V1: tee (size M 20/8), mug (red 12.50/4), coupon SAVE10 10% no limit
//	V2: lamp (size STD 100/60), coupon ONCE flat 15, usage limit 1
func SeedMarketplace(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	statements := []string{
		`INSERT INTO shops (id, name, email) VALUES
			('V1', 'Threads', 'v1@example.com'),
			('V2', 'Lumen', 'v2@example.com')`,
		`INSERT INTO device_tokens (shop_id, token) VALUES ('V1', 'ExponentPushToken[v1]')`,
		`INSERT INTO products (id, shop_id, name, sizes) VALUES
			('tee', 'V1', 'Tee', '[{"size":"M","price":20,"expense":8}]'),
			('mug', 'V1', 'Mug', '[]'),
			('lamp', 'V2', 'Lamp', '[{"size":"STD","price":100,"expense":60}]')`,
		`INSERT INTO product_color_variants (product_id, color, price, expense) VALUES
			('mug', 'red', 12.50, 4)`,
		`INSERT INTO coupons (id, code, shop_id, discount_type, discount_value, min_order_value, start_date, end_date, usage_limit)
		 VALUES
			(gen_random_uuid(), 'SAVE10', 'V1', 'percentage', 10, 0, NOW() - INTERVAL '1 day', NOW() + INTERVAL '30 days', NULL),
			(gen_random_uuid(), 'ONCE', 'V2', 'flat', 15, 50, NOW() - INTERVAL '1 day', NOW() + INTERVAL '30 days', 1)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("failed to seed marketplace: %v", err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"coupon_usages", "order_line_items", "orders", "coupons",
		"product_color_variants", "products", "device_tokens", "shops",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
