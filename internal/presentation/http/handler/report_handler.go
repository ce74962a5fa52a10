package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lmwati/dukapos-api/internal/application/service"
	"github.com/lmwati/dukapos-api/internal/presentation/http/dto/response"
)

// ReportHandler handles sales reporting HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) period(c *gin.Context) (*service.ReportPeriod, error) {
	return service.ResolvePeriod(parseDate(c.Query("start_date")), parseDate(c.Query("end_date")))
}

// SalesSummary handles the aggregate sales report
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	period, err := h.period(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.reportService.GetSalesSummary(c.Request.Context(), GetShopID(c), period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales summary retrieved successfully", summary)
}

// DailySales handles the per-day sales report
func (h *ReportHandler) DailySales(c *gin.Context) {
	period, err := h.period(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	daily, err := h.reportService.GetDailySales(c.Request.Context(), GetShopID(c), period)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily sales retrieved successfully", daily)
}

// TopProducts handles the best-sellers report
func (h *ReportHandler) TopProducts(c *gin.Context) {
	period, err := h.period(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	top, err := h.reportService.GetTopProducts(c.Request.Context(), GetShopID(c), period, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top products retrieved successfully", top)
}

// ExportSales streams the sales export as an xlsx download
func (h *ReportHandler) ExportSales(c *gin.Context) {
	period, err := h.period(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	export, err := h.reportService.BuildSalesExport(c.Request.Context(), GetShopID(c), period)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.File.Write(c.Writer); err != nil {
		response.Error(c, err)
	}
}
