package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/application/service"
	"github.com/lmwati/dukapos-api/internal/domain/repository"
	"github.com/lmwati/dukapos-api/internal/presentation/http/dto/request"
	"github.com/lmwati/dukapos-api/internal/presentation/http/dto/response"
	"github.com/lmwati/dukapos-api/pkg/pagination"
	"github.com/lmwati/dukapos-api/pkg/pricing"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func toDiscount(d request.DiscountRequest) pricing.Discount {
	discountType := d.Type
	if discountType == "" {
		discountType = pricing.DiscountTypeFixed
	}
	return pricing.Discount{Value: d.Value, Type: discountType}
}

func toOrderItems(items []request.OrderItemRequest) []service.OrderItemInput {
	out := make([]service.OrderItemInput, len(items))
	for i, item := range items {
		out[i] = service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// Preview handles the live cart preview. An oversized discount is
// corrected to the maximum instead of rejected.
func (h *OrderHandler) Preview(c *gin.Context) {
	var req request.PreviewCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.orderService.PreviewCart(c.Request.Context(), GetShopID(c), toOrderItems(req.Items), toDiscount(req.Discount))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart calculated successfully", result)
}

// Create handles checkout
func (h *OrderHandler) Create(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderInput{
		ShopID:   GetShopID(c),
		UserID:   GetUserID(c),
		Discount: toDiscount(req.Discount),
		Items:    toOrderItems(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles getting a single order
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), GetShopID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// Update handles editing an order's quantities and discount
func (h *OrderHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	edits := make([]service.OrderItemEditInput, len(req.Items))
	for i, item := range req.Items {
		edits[i] = service.OrderItemEditInput{ItemID: item.ItemID, NewQuantity: item.NewQuantity}
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), &service.UpdateOrderInput{
		ShopID:   GetShopID(c),
		OrderID:  id,
		Items:    edits,
		Discount: toDiscount(req.Discount),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order updated successfully", order)
}

// Delete handles deleting an order, restoring its stock
func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), GetShopID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order deleted successfully", nil)
}

// List handles listing orders (supports both page-based and cursor-based pagination)
func (h *OrderHandler) List(c *gin.Context) {
	shopID := GetShopID(c)

	if cursor := c.Query("cursor"); cursor != "" || c.Query("limit") != "" {
		h.listWithCursor(c, shopID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		StartDate: parseDate(c.Query("start_date")),
		EndDate:   parseDate(c.Query("end_date")),
	}
	params.Pagination.Validate()

	result, err := h.orderService.ListOrders(c.Request.Context(), shopID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// listWithCursor handles listing orders with keyset pagination
func (h *OrderHandler) listWithCursor(c *gin.Context, shopID uuid.UUID) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))

	cursorParams := &pagination.CursorParams{
		Cursor: c.Query("cursor"),
		Limit:  limit,
	}
	cursorParams.Validate()

	params := &repository.OrderCursorFilterParams{
		Cursor:    cursorParams,
		Search:    c.Query("search"),
		StartDate: parseDate(c.Query("start_date")),
		EndDate:   parseDate(c.Query("end_date")),
	}

	result, err := h.orderService.ListOrdersWithCursor(c.Request.Context(), shopID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithCursor(c, 200, "Orders retrieved successfully", result)
}
