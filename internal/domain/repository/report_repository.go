package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SalesSummary aggregates a shop's trading results for a date range.
// Money is in cents; gross profit is revenue minus cost-at-sale.
type SalesSummary struct {
	OrderCount    int64
	ItemsSold     int64
	GrossRevenue  int64
	DiscountTotal int64
	NetRevenue    int64
	CostOfGoods   int64
	GrossProfit   int64
}

// DailySalesResult represents sales data for a single day
type DailySalesResult struct {
	Date     time.Time
	Orders   int64
	Revenue  int64 // cents
	Discount int64
	Profit   int64
}

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID
	ProductName  string
	QuantitySold int
	Revenue      int64 // cents
}

// ReportRepository defines the interface for reporting aggregations.
// All queries aggregate persisted order snapshots, never current
// product prices.
type ReportRepository interface {
	GetSalesSummary(ctx context.Context, shopID uuid.UUID, start, end time.Time) (*SalesSummary, error)
	GetDailySales(ctx context.Context, shopID uuid.UUID, start, end time.Time) ([]DailySalesResult, error)
	GetTopProducts(ctx context.Context, shopID uuid.UUID, start, end time.Time, limit int) ([]TopProductResult, error)
}
