package coupon

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Column order of a coupon definition file. A header row is optional.
var csvHeader = []string{
	"code", "shop_id", "discount_type", "value", "min_order_value",
	"start_date", "end_date", "usage_limit",
}

// fileLoader implements Loader for reading gzipped coupon files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped coupon definition file from the local file system.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Coupon, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	coupons, err := readGzipCSV(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading coupon file")
		return nil, fmt.Errorf("error reading coupon file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", len(coupons)).
		Msg("coupon file loaded successfully")

	return coupons, nil
}

// readGzipCSV decodes a gzipped CSV stream of coupon definitions.
func readGzipCSV(ctx context.Context, r io.Reader) ([]model.Coupon, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	reader := csv.NewReader(gzipReader)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true

	var coupons []model.Coupon
	for line := 1; ; line++ {
		if line%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if line == 1 && strings.EqualFold(record[0], csvHeader[0]) {
			continue
		}

		c, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		coupons = append(coupons, c)
	}

	return coupons, nil
}

func parseRecord(record []string) (model.Coupon, error) {
	c := model.Coupon{
		ID:           uuid.New(),
		Code:         strings.TrimSpace(record[0]),
		ShopID:       strings.TrimSpace(record[1]),
		DiscountType: model.DiscountType(strings.ToLower(strings.TrimSpace(record[2]))),
	}

	if c.Code == "" {
		return c, fmt.Errorf("code is required")
	}
	if c.ShopID == "" {
		return c, fmt.Errorf("coupon %s: shop_id is required", c.Code)
	}
	if !c.DiscountType.Valid() {
		return c, fmt.Errorf("coupon %s: invalid discount type %q", c.Code, record[2])
	}

	var err error
	if c.DiscountValue, err = decimal.NewFromString(strings.TrimSpace(record[3])); err != nil {
		return c, fmt.Errorf("coupon %s: invalid value: %w", c.Code, err)
	}
	if c.DiscountValue.IsNegative() {
		return c, fmt.Errorf("coupon %s: value must not be negative", c.Code)
	}
	if c.DiscountType == model.DiscountPercentage && c.DiscountValue.GreaterThan(hundred) {
		return c, fmt.Errorf("coupon %s: percentage must not exceed 100", c.Code)
	}

	c.MinOrderValue = decimal.Zero
	if v := strings.TrimSpace(record[4]); v != "" {
		if c.MinOrderValue, err = decimal.NewFromString(v); err != nil {
			return c, fmt.Errorf("coupon %s: invalid min_order_value: %w", c.Code, err)
		}
	}

	if c.StartDate, err = parseDate(record[5]); err != nil {
		return c, fmt.Errorf("coupon %s: invalid start_date: %w", c.Code, err)
	}
	if c.EndDate, err = parseDate(record[6]); err != nil {
		return c, fmt.Errorf("coupon %s: invalid end_date: %w", c.Code, err)
	}
	if isDateOnly(record[6]) {
		c.EndDate = c.EndDate.Add(24*time.Hour - time.Nanosecond)
	}
	if c.EndDate.Before(c.StartDate) {
		return c, fmt.Errorf("coupon %s: end_date is before start_date", c.Code)
	}

	if v := strings.TrimSpace(record[7]); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return c, fmt.Errorf("coupon %s: invalid usage_limit %q", c.Code, v)
		}
		c.UsageLimit = &limit
	}

	return c, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates in UTC.
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func isDateOnly(v string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(v))
	return err == nil
}
