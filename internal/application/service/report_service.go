package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/internal/domain/repository"
	"github.com/lmwati/dukapos-api/pkg/apperror"
	"github.com/lmwati/dukapos-api/pkg/export"
	"github.com/lmwati/dukapos-api/pkg/pagination"
)

// ReportService aggregates sales figures from persisted order snapshots.
// Current product prices never feed a report.
type ReportService struct {
	reportRepo repository.ReportRepository
	orderRepo  repository.OrderRepository
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.ReportRepository, orderRepo repository.OrderRepository) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		orderRepo:  orderRepo,
	}
}

// ReportPeriod is a validated date range for report queries
type ReportPeriod struct {
	Start time.Time
	End   time.Time
}

// ResolvePeriod normalizes an optional date range. Defaults to the last
// 30 days; an inverted range is a bad request.
func ResolvePeriod(start, end *time.Time) (*ReportPeriod, error) {
	now := time.Now()
	period := &ReportPeriod{
		Start: now.AddDate(0, 0, -30),
		End:   now,
	}
	if start != nil {
		period.Start = *start
	}
	if end != nil {
		period.End = *end
	}
	if period.End.Before(period.Start) {
		return nil, apperror.NewBadRequestError("End date must be after start date")
	}
	return period, nil
}

// GetSalesSummary returns aggregate trading results for the period
func (s *ReportService) GetSalesSummary(ctx context.Context, shopID uuid.UUID, period *ReportPeriod) (*repository.SalesSummary, error) {
	return s.reportRepo.GetSalesSummary(ctx, shopID, period.Start, period.End)
}

// GetDailySales returns per-day sales figures for the period
func (s *ReportService) GetDailySales(ctx context.Context, shopID uuid.UUID, period *ReportPeriod) ([]repository.DailySalesResult, error) {
	return s.reportRepo.GetDailySales(ctx, shopID, period.Start, period.End)
}

// GetTopProducts returns the best sellers for the period
func (s *ReportService) GetTopProducts(ctx context.Context, shopID uuid.UUID, period *ReportPeriod, limit int) ([]repository.TopProductResult, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.reportRepo.GetTopProducts(ctx, shopID, period.Start, period.End, limit)
}

// SalesExport is a rendered workbook ready for download
type SalesExport struct {
	File     *excelize.File
	Filename string
}

// BuildSalesExport renders every order in the period into an xlsx
// workbook, one row per order.
func (s *ReportService) BuildSalesExport(ctx context.Context, shopID uuid.UUID, period *ReportPeriod) (*SalesExport, error) {
	rows := make([]export.SalesRow, 0)

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: 100},
		StartDate:  &period.Start,
		EndDate:    &period.End,
		SortBy:     "order_date",
		SortOrder:  "asc",
	}

	for {
		orders, total, err := s.orderRepo.List(ctx, shopID, params)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			rows = append(rows, orderToSalesRow(&orders[i]))
		}
		if int64(params.Pagination.Page*params.Pagination.PerPage) >= total || len(orders) == 0 {
			break
		}
		params.Pagination.Page++
	}

	title := fmt.Sprintf("Sales %s to %s",
		period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"))
	file, err := export.SalesReport(title, rows)
	if err != nil {
		return nil, err
	}

	return &SalesExport{
		File:     file,
		Filename: export.Filename("sales", time.Now()),
	}, nil
}

func orderToSalesRow(order *entity.Order) export.SalesRow {
	var profit int64
	for _, item := range order.Items {
		profit += item.LineTotal - int64(item.Quantity)*item.CostAtSale
	}
	return export.SalesRow{
		Date:        order.OrderDate,
		OrderNo:     order.OrderNo,
		ItemCount:   order.TotalItems,
		Subtotal:    order.Subtotal,
		Discount:    order.DiscountAmount,
		Total:       order.TotalAmount,
		GrossProfit: profit,
	}
}
