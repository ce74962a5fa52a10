package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/lmwati/dukapos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

// Aggregations read the persisted order snapshots (sold_at,
// cost_at_sale, discount), so rewriting a product's prices never
// rewrites past results.

func (r *reportRepository) GetSalesSummary(ctx context.Context, shopID uuid.UUID, start, end time.Time) (*domainRepo.SalesSummary, error) {
	var summary domainRepo.SalesSummary

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT o.id) as order_count,
			COALESCE(SUM(oi.quantity), 0) as items_sold,
			COALESCE(SUM(oi.quantity * oi.sold_at), 0) as gross_revenue,
			COALESCE(SUM(oi.quantity * oi.discount), 0) as discount_total,
			COALESCE(SUM(oi.quantity * (oi.sold_at - oi.discount)), 0) as net_revenue,
			COALESCE(SUM(oi.quantity * oi.cost_at_sale), 0) as cost_of_goods,
			COALESCE(SUM(oi.quantity * (oi.sold_at - oi.discount - oi.cost_at_sale)), 0) as gross_profit
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.shop_id = ?
		AND o.order_date >= ? AND o.order_date < ?
		AND o.deleted_at IS NULL AND oi.deleted_at IS NULL
	`, shopID, start, end).Scan(&summary).Error

	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *reportRepository) GetDailySales(ctx context.Context, shopID uuid.UUID, start, end time.Time) ([]domainRepo.DailySalesResult, error) {
	var results []domainRepo.DailySalesResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE_TRUNC('day', o.order_date) as date,
			COUNT(DISTINCT o.id) as orders,
			COALESCE(SUM(oi.quantity * (oi.sold_at - oi.discount)), 0) as revenue,
			COALESCE(SUM(oi.quantity * oi.discount), 0) as discount,
			COALESCE(SUM(oi.quantity * (oi.sold_at - oi.discount - oi.cost_at_sale)), 0) as profit
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.shop_id = ?
		AND o.order_date >= ? AND o.order_date < ?
		AND o.deleted_at IS NULL AND oi.deleted_at IS NULL
		GROUP BY DATE_TRUNC('day', o.order_date)
		ORDER BY date ASC
	`, shopID, start, end).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reportRepository) GetTopProducts(ctx context.Context, shopID uuid.UUID, start, end time.Time, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			oi.product_id as product_id,
			oi.product_name as product_name,
			COALESCE(SUM(oi.quantity), 0) as quantity_sold,
			COALESCE(SUM(oi.quantity * (oi.sold_at - oi.discount)), 0) as revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.shop_id = ?
		AND o.order_date >= ? AND o.order_date < ?
		AND o.deleted_at IS NULL AND oi.deleted_at IS NULL
		GROUP BY oi.product_id, oi.product_name
		ORDER BY revenue DESC
		LIMIT ?
	`, shopID, start, end, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}
