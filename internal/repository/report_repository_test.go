package repository

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	seedShop(t, pool, "V1", "v1@example.com")

	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, shop_id, name, sizes) VALUES
			('tee', 'V1', 'Tee', '[{"size":"M","price":20,"expense":8}]'),
			('mug', 'V1', 'Mug', '[]')`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO product_color_variants (product_id, color, price, expense)
		VALUES ('mug', 'red', 12.50, 4)`)
	require.NoError(t, err)
}

func TestReportRepository_DeliveredLines(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, pool)

	orders := NewOrderRepository(pool, zerolog.Nop())
	repo := NewReportRepository(pool, zerolog.Nop())
	ctx := context.Background()

	jan := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

	// Delivered in January: one sized tee and one red mug
	p1, s1 := testCheckout(jan, "V1")
	s1[0].Status = model.StatusDelivered
	insertCheckout(t, orders, p1, s1, []model.OrderLineItem{
		lineItem(s1[0].ID, "tee", 2, 20, "M", model.NotSelected),
		lineItem(s1[0].ID, "mug", 1, 12, model.NotSelected, "red"),
	})

	// Delivered in February
	p2, s2 := testCheckout(feb, "V1")
	s2[0].Status = model.StatusDelivered
	insertCheckout(t, orders, p2, s2, []model.OrderLineItem{
		lineItem(s2[0].ID, "tee", 1, 20, "M", model.NotSelected),
	})

	// Shipped, never counted
	p3, s3 := testCheckout(jan, "V1")
	s3[0].Status = model.StatusShipped
	insertCheckout(t, orders, p3, s3, []model.OrderLineItem{
		lineItem(s3[0].ID, "tee", 9, 20, "M", model.NotSelected),
	})

	t.Run("all time", func(t *testing.T) {
		lines, err := repo.DeliveredLines(ctx, model.ReportQuery{ShopID: "V1"})
		require.NoError(t, err)
		require.Len(t, lines, 3)

		var mug *model.DeliveredLine
		for i := range lines {
			assert.NotEqual(t, 9, lines[i].Quantity, "undelivered orders are excluded")
			if lines[i].ProductID == "mug" {
				mug = &lines[i]
			}
		}
		require.NotNil(t, mug)
		require.NotNil(t, mug.ColorPrice)
		assert.True(t, decimal.RequireFromString("12.50").Equal(*mug.ColorPrice))
		assert.True(t, decimal.NewFromInt(4).Equal(*mug.ColorExpense))
	})

	t.Run("window is half open", func(t *testing.T) {
		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
		lines, err := repo.DeliveredLines(ctx, model.ReportQuery{ShopID: "V1", From: &from, To: &to})
		require.NoError(t, err)
		assert.Len(t, lines, 2)
		for _, l := range lines {
			assert.Equal(t, s1[0].ID.String(), l.OrderID)
		}
	})

	t.Run("monthly buckets", func(t *testing.T) {
		lines, err := repo.DeliveredLines(ctx, model.ReportQuery{ShopID: "V1", Granularity: model.GranularityMonthly})
		require.NoError(t, err)
		require.Len(t, lines, 3)

		require.NotNil(t, lines[0].Bucket)
		assert.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*lines[0].Bucket))
		require.NotNil(t, lines[2].Bucket)
		assert.True(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Equal(*lines[2].Bucket))
	})

	t.Run("sized product has no color variant", func(t *testing.T) {
		lines, err := repo.DeliveredLines(ctx, model.ReportQuery{ShopID: "V1"})
		require.NoError(t, err)
		for _, l := range lines {
			if l.ProductID == "tee" {
				assert.Nil(t, l.ColorPrice)
				assert.JSONEq(t, `[{"size":"M","price":20,"expense":8}]`, string(l.SizesJSON))
			}
		}
	})

	t.Run("other shop", func(t *testing.T) {
		lines, err := repo.DeliveredLines(ctx, model.ReportQuery{ShopID: "V2"})
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}

func TestReportRepository_DeliveredLines_OrderWithoutItems(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, pool)

	orders := NewOrderRepository(pool, zerolog.Nop())
	repo := NewReportRepository(pool, zerolog.Nop())
	ctx := context.Background()

	p, s := testCheckout(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), "V1")
	s[0].Status = model.StatusDelivered
	insertCheckout(t, orders, p, s, nil)

	lines, err := repo.DeliveredLines(ctx, model.ReportQuery{ShopID: "V1"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, s[0].ID.String(), lines[0].OrderID)
	assert.Equal(t, 0, lines[0].Quantity)
	assert.Empty(t, lines[0].ProductID)
	assert.Nil(t, lines[0].ColorPrice)
}
