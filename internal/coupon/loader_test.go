package coupon

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marketplace/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestCouponFile creates a gzipped CSV coupon file.
func createTestCouponFile(t *testing.T, filename string, lines []string) string {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	_, err = gzipWriter.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)

	return filePath
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCouponFile(t, "coupons.csv.gz", []string{
		"code,shop_id,discount_type,value,min_order_value,start_date,end_date,usage_limit",
		"SAVE10,shop-1,percentage,10,100,2025-01-01,2025-12-31,5",
		"FLAT20,shop-2,FLAT,20,,2025-01-01T00:00:00Z,2025-06-30T12:00:00Z,",
	})

	coupons, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, coupons, 2)

	first := coupons[0]
	assert.Equal(t, "SAVE10", first.Code)
	assert.Equal(t, "shop-1", first.ShopID)
	assert.Equal(t, model.DiscountPercentage, first.DiscountType)
	assert.True(t, decimal.NewFromInt(10).Equal(first.DiscountValue))
	assert.True(t, decimal.NewFromInt(100).Equal(first.MinOrderValue))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 999999999, time.UTC), first.EndDate)
	require.NotNil(t, first.UsageLimit)
	assert.Equal(t, 5, *first.UsageLimit)

	second := coupons[1]
	assert.Equal(t, model.DiscountFlat, second.DiscountType)
	assert.True(t, second.MinOrderValue.IsZero())
	assert.Nil(t, second.UsageLimit)
	assert.Equal(t, time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC), second.EndDate)
}

func TestFileLoader_Load_WithoutHeader(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCouponFile(t, "coupons.csv.gz", []string{
		"CODE1,shop-1,flat,5,0,2025-01-01,2025-01-31,",
	})

	coupons, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "CODE1", coupons[0].Code)
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	coupons, err := loader.Load(context.Background(), "/nonexistent/file.gz")

	require.Error(t, err)
	assert.Nil(t, coupons)
	assert.Contains(t, err.Error(), "failed to open coupon file")
}

func TestFileLoader_Load_NotGzipped(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := filepath.Join(t.TempDir(), "plain.csv")
	require.NoError(t, os.WriteFile(filePath, []byte("CODE1,shop-1,flat,5,0,2025-01-01,2025-01-31,\n"), 0o600))

	coupons, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, coupons)
	assert.Contains(t, err.Error(), "gzip")
}

func TestFileLoader_Load_InvalidRows(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr string
	}{
		{name: "missing code", row: ",shop-1,flat,5,0,2025-01-01,2025-01-31,", wantErr: "code is required"},
		{name: "missing shop", row: "C1,,flat,5,0,2025-01-01,2025-01-31,", wantErr: "shop_id is required"},
		{name: "unknown type", row: "C1,shop-1,bogo,5,0,2025-01-01,2025-01-31,", wantErr: "invalid discount type"},
		{name: "bad value", row: "C1,shop-1,flat,five,0,2025-01-01,2025-01-31,", wantErr: "invalid value"},
		{name: "negative value", row: "C1,shop-1,flat,-5,0,2025-01-01,2025-01-31,", wantErr: "must not be negative"},
		{name: "percentage above 100", row: "C1,shop-1,percentage,150,0,2025-01-01,2025-01-31,", wantErr: "must not exceed 100"},
		{name: "bad start date", row: "C1,shop-1,flat,5,0,01/01/2025,2025-01-31,", wantErr: "invalid start_date"},
		{name: "end before start", row: "C1,shop-1,flat,5,0,2025-02-01,2025-01-31,", wantErr: "end_date is before start_date"},
		{name: "negative limit", row: "C1,shop-1,flat,5,0,2025-01-01,2025-01-31,-1", wantErr: "invalid usage_limit"},
		{name: "wrong field count", row: "C1,shop-1,flat", wantErr: "line 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewFileLoader(zerolog.Nop())
			filePath := createTestCouponFile(t, "bad.csv.gz", []string{tt.row})

			coupons, err := loader.Load(context.Background(), filePath)

			require.Error(t, err)
			assert.Nil(t, coupons)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
