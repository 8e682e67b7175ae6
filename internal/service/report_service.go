package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// reportService implements ReportService.
type reportService struct {
	reportRepo repository.ReportRepository
	logger     zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ReportRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		logger:     logger.With().Str("service", "report").Logger(),
	}
}

// VendorReport sums revenue and expense over a shop's delivered sub-orders.
// Each line is priced from its color variant, then its size variant, then
// zero.
func (s *reportService) VendorReport(ctx context.Context, q model.ReportQuery) (*model.VendorReport, error) {
	if strings.TrimSpace(q.ShopID) == "" {
		return nil, model.NewValidationError("shopId is required")
	}
	if !q.Granularity.Valid() {
		return nil, model.NewValidationError("granularity must be daily, weekly or monthly")
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, model.NewValidationError("to must not be before from")
	}

	lines, err := s.reportRepo.DeliveredLines(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Str("shop_id", q.ShopID).Msg("failed to load delivered lines")
		return nil, fmt.Errorf("failed to build vendor report: %w", err)
	}

	report := &model.VendorReport{
		ShopID:       q.ShopID,
		Granularity:  q.Granularity,
		ReportTotals: zeroTotals(),
	}

	total := newAccumulator()
	buckets := make(map[time.Time]*accumulator)
	sizeCache := make(map[string][]model.SizeVariant)

	for _, line := range lines {
		revenue, expense := s.priceLine(line, sizeCache)
		total.add(line.OrderID, revenue, expense)

		if q.Granularity != model.GranularityNone && line.Bucket != nil {
			key := line.Bucket.UTC()
			acc, ok := buckets[key]
			if !ok {
				acc = newAccumulator()
				buckets[key] = acc
			}
			acc.add(line.OrderID, revenue, expense)
		}
	}

	report.ReportTotals = total.totals()

	if q.Granularity != model.GranularityNone {
		report.Buckets = make([]model.ReportBucket, 0, len(buckets))
		for period, acc := range buckets {
			report.Buckets = append(report.Buckets, model.ReportBucket{Period: period, ReportTotals: acc.totals()})
		}
		sort.Slice(report.Buckets, func(i, j int) bool {
			return report.Buckets[i].Period.Before(report.Buckets[j].Period)
		})
	}

	s.logger.Debug().
		Str("shop_id", q.ShopID).
		Int("lines", len(lines)).
		Int("orders", report.TotalOrders).
		Msg("vendor report built")

	return report, nil
}

// priceLine returns the line's revenue and expense, already multiplied by
// quantity.
func (s *reportService) priceLine(line model.DeliveredLine, sizeCache map[string][]model.SizeVariant) (decimal.Decimal, decimal.Decimal) {
	qty := decimal.NewFromInt(int64(line.Quantity))

	if line.ColorPrice != nil {
		expense := decimal.Zero
		if line.ColorExpense != nil {
			expense = *line.ColorExpense
		}
		return line.ColorPrice.Mul(qty), expense.Mul(qty)
	}

	sizes, ok := sizeCache[line.ProductID]
	if !ok {
		if len(line.SizesJSON) > 0 {
			if err := json.Unmarshal(line.SizesJSON, &sizes); err != nil {
				s.logger.Warn().Err(err).Str("product_id", line.ProductID).Msg("unreadable product size list")
				sizes = nil
			}
		}
		sizeCache[line.ProductID] = sizes
	}

	for _, v := range sizes {
		if strings.EqualFold(v.Size, line.Size) {
			return v.Price.Mul(qty), v.Expense.Mul(qty)
		}
	}

	return decimal.Zero, decimal.Zero
}

type accumulator struct {
	orders  map[string]struct{}
	revenue decimal.Decimal
	expense decimal.Decimal
}

func newAccumulator() *accumulator {
	return &accumulator{
		orders:  make(map[string]struct{}),
		revenue: decimal.Zero,
		expense: decimal.Zero,
	}
}

func (a *accumulator) add(orderID string, revenue, expense decimal.Decimal) {
	a.orders[orderID] = struct{}{}
	a.revenue = a.revenue.Add(revenue)
	a.expense = a.expense.Add(expense)
}

func (a *accumulator) totals() model.ReportTotals {
	return model.ReportTotals{
		TotalOrders:  len(a.orders),
		TotalRevenue: a.revenue,
		TotalExpense: a.expense,
		Profit:       a.revenue.Sub(a.expense),
	}
}

func zeroTotals() model.ReportTotals {
	return newAccumulator().totals()
}
