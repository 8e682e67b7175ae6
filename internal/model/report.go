package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity is the bucket width of a vendor report.
type Granularity string

const (
	GranularityNone    Granularity = ""
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// TruncUnit returns the Postgres date_trunc unit for g.
func (g Granularity) TruncUnit() string {
	switch g {
	case GranularityDaily:
		return "day"
	case GranularityWeekly:
		return "week"
	case GranularityMonthly:
		return "month"
	}
	return ""
}

// Valid reports whether g is empty or a supported bucket width.
func (g Granularity) Valid() bool {
	return g == GranularityNone || g.TruncUnit() != ""
}

// ReportQuery selects the delivered sub-orders of one shop.
type ReportQuery struct {
	ShopID      string
	From        *time.Time
	To          *time.Time
	Granularity Granularity
}

// SizeVariant is one entry of a product's size price list.
type SizeVariant struct {
	Size    string          `json:"size"`
	Price   decimal.Decimal `json:"price"`
	Expense decimal.Decimal `json:"expense"`
}

// DeliveredLine is a delivered line item with the catalog data needed to
// price it.
type DeliveredLine struct {
	OrderID      string
	Bucket       *time.Time
	ProductID    string
	Quantity     int
	Size         string
	Color        string
	ColorPrice   *decimal.Decimal
	ColorExpense *decimal.Decimal
	SizesJSON    []byte
}

// ReportTotals are the aggregates of one report or bucket.
type ReportTotals struct {
	TotalOrders  int             `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Profit       decimal.Decimal `json:"profit"`
}

// ReportBucket is one period of a bucketed report.
type ReportBucket struct {
	Period time.Time `json:"period"`
	ReportTotals
}

// VendorReport is the delivered-order rollup for one shop.
type VendorReport struct {
	ShopID      string      `json:"shopId"`
	Granularity Granularity `json:"granularity,omitempty"`
	ReportTotals
	Buckets []ReportBucket `json:"buckets,omitempty"`
}
