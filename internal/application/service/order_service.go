package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/internal/domain/repository"
	"github.com/lmwati/dukapos-api/pkg/apperror"
	"github.com/lmwati/dukapos-api/pkg/pagination"
	"github.com/lmwati/dukapos-api/pkg/pricing"
	"github.com/lmwati/dukapos-api/pkg/utils"
)

// OrderService handles checkout, order history and the reconciliation
// paths. Checkout math is delegated to pkg/pricing; the server-side
// calculation is authoritative and client-sent totals are never trusted.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// OrderItemInput represents an item in a checkout request
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	ShopID   uuid.UUID
	UserID   uuid.UUID
	Discount pricing.Discount
	Items    []OrderItemInput
}

// OrderItemEditInput adjusts one existing line. NewQuantity <= 0
// removes the line and restores its full quantity to stock.
type OrderItemEditInput struct {
	ItemID      uuid.UUID
	NewQuantity int
}

// UpdateOrderInput represents the edit order input
type UpdateOrderInput struct {
	ShopID   uuid.UUID
	OrderID  uuid.UUID
	Items    []OrderItemEditInput
	Discount pricing.Discount
}

// mergeItems drops non-positive quantities and merges duplicate product
// lines, preserving first-seen order.
func mergeItems(items []OrderItemInput) []OrderItemInput {
	merged := make([]OrderItemInput, 0, len(items))
	index := make(map[uuid.UUID]int)
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func (s *OrderService) loadProducts(ctx context.Context, shopID uuid.UUID, items []OrderItemInput) (map[uuid.UUID]*entity.Product, error) {
	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, shopID, productIDs)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	for _, item := range items {
		if _, exists := productMap[item.ProductID]; !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
	}
	return productMap, nil
}

// PreviewCart computes cart totals in live-cart mode: an oversized
// discount is corrected to the maximum instead of rejected, and the
// applied type flips to fixed.
func (s *OrderService) PreviewCart(ctx context.Context, shopID uuid.UUID, items []OrderItemInput, discount pricing.Discount) (*pricing.Result, error) {
	merged := mergeItems(items)
	if len(merged) == 0 {
		return nil, apperror.NewBadRequestError("Cart has no items")
	}

	productMap, err := s.loadProducts(ctx, shopID, merged)
	if err != nil {
		return nil, err
	}

	cart := make([]pricing.Item, len(merged))
	for i, item := range merged {
		p := productMap[item.ProductID]
		cart[i] = pricing.Item{Quantity: item.Quantity, SellPrice: p.SellPrice, FloorPrice: p.FloorPrice}
	}

	return pricing.Calculate(cart, discount, pricing.Options{AutoClampOnOverflow: true})
}

// CreateOrder records a sale. Prices and totals are recomputed from
// current product state server-side; stock decrements and order rows
// commit in one transaction with a current_stock >= quantity guard.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	items := mergeItems(input.Items)
	if len(items) == 0 {
		return nil, apperror.NewBadRequestError("Order has no items")
	}

	productMap, err := s.loadProducts(ctx, input.ShopID, items)
	if err != nil {
		return nil, err
	}

	cart := make([]pricing.Item, len(items))
	for i, item := range items {
		p := productMap[item.ProductID]
		cart[i] = pricing.Item{Quantity: item.Quantity, SellPrice: p.SellPrice, FloorPrice: p.FloorPrice}
	}

	result, err := pricing.Calculate(cart, input.Discount, pricing.Options{})
	if err != nil {
		var exceeds *pricing.ExceedsMaxError
		if errors.As(err, &exceeds) {
			return nil, apperror.NewDiscountExceedsMaxError(exceeds.Max)
		}
		return nil, err
	}

	var totalItems int
	orderItems := make([]entity.OrderItem, 0, len(items))
	stockDecrements := make(map[uuid.UUID]int, len(items))

	for i, item := range items {
		p := productMap[item.ProductID]
		alloc := result.Allocations[i]

		totalItems += item.Quantity
		orderItems = append(orderItems, entity.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			SoldAt:      p.SellPrice,
			CostAtSale:  p.CostPrice,
			// whole-cent snapshot; the exact line share lives in LineTotal
			Discount:  alloc.PerUnit.IntPart(),
			LineTotal: alloc.ItemSubtotal - alloc.ItemDiscount,
		})
		stockDecrements[p.ID] = item.Quantity
	}

	order := &entity.Order{
		ShopID:         input.ShopID,
		UserID:         input.UserID,
		OrderNo:        utils.GenerateReferenceNo("ORD"),
		OrderDate:      time.Now(),
		TotalItems:     totalItems,
		Subtotal:       result.Subtotal,
		DiscountAmount: result.Discount,
		DiscountType:   result.AppliedType,
		TotalAmount:    result.GrandTotal,
		Items:          orderItems,
	}
	if order.DiscountType == "" {
		order.DiscountType = pricing.DiscountTypeFixed
	}

	if err := s.orderRepo.CreateWithItems(ctx, order, stockDecrements); err != nil {
		return nil, s.mapStockError(err, productMap)
	}

	return s.orderRepo.GetByID(ctx, input.ShopID, order.ID)
}

// UpdateOrder edits quantities and the discount of an existing order.
// The new subtotal comes from the original sold-at prices, never from
// current product prices; only stock and floor validation consult the
// live products.
func (s *OrderService) UpdateOrder(ctx context.Context, input *UpdateOrderInput) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, input.ShopID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	itemByID := make(map[uuid.UUID]*entity.OrderItem, len(order.Items))
	for i := range order.Items {
		itemByID[order.Items[i].ID] = &order.Items[i]
	}

	newQuantities := make(map[uuid.UUID]int, len(order.Items))
	for _, item := range order.Items {
		newQuantities[item.ID] = item.Quantity
	}
	for _, edit := range input.Items {
		if _, ok := itemByID[edit.ItemID]; !ok {
			return nil, apperror.NewNotFoundError("Order item")
		}
		if edit.NewQuantity < 0 {
			newQuantities[edit.ItemID] = 0
		} else {
			newQuantities[edit.ItemID] = edit.NewQuantity
		}
	}

	// Current floor prices bound the edited discount. Products deleted
	// since the sale impose no floor.
	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, input.ShopID, productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	cart := make([]pricing.Item, len(order.Items))
	for i, item := range order.Items {
		var floor int64
		if p, ok := productMap[item.ProductID]; ok {
			floor = p.FloorPrice
		}
		cart[i] = pricing.Item{
			Quantity:   newQuantities[item.ID],
			SellPrice:  item.SoldAt,
			FloorPrice: floor,
		}
	}

	result, err := pricing.Calculate(cart, input.Discount, pricing.Options{})
	if err != nil {
		var exceeds *pricing.ExceedsMaxError
		if errors.As(err, &exceeds) {
			return nil, apperror.NewDiscountExceedsMaxError(exceeds.Max)
		}
		return nil, err
	}

	var totalItems int
	var kept []entity.OrderItem
	var removeIDs []uuid.UUID
	deltas := make(map[uuid.UUID]int)

	for i := range order.Items {
		item := order.Items[i]
		newQty := newQuantities[item.ID]
		deltas[item.ProductID] += item.Quantity - newQty

		if newQty <= 0 {
			removeIDs = append(removeIDs, item.ID)
			continue
		}

		alloc := result.Allocations[i]
		item.Quantity = newQty
		item.Discount = alloc.PerUnit.IntPart()
		item.LineTotal = alloc.ItemSubtotal - alloc.ItemDiscount
		totalItems += newQty
		kept = append(kept, item)
	}

	order.TotalItems = totalItems
	order.Subtotal = result.Subtotal
	order.DiscountAmount = result.Discount
	order.DiscountType = result.AppliedType
	if order.DiscountType == "" {
		order.DiscountType = pricing.DiscountTypeFixed
	}
	order.TotalAmount = result.GrandTotal

	if err := s.orderRepo.UpdateWithStockDeltas(ctx, order, kept, removeIDs, deltas); err != nil {
		return nil, s.mapStockError(err, productMap)
	}

	return s.orderRepo.GetByID(ctx, input.ShopID, order.ID)
}

// DeleteOrder removes an order, restoring each item's quantity to its
// product. Deleting the same order twice fails not-found the second
// time with no stock effects.
func (s *OrderService) DeleteOrder(ctx context.Context, shopID, orderID uuid.UUID) error {
	err := s.orderRepo.DeleteRestoringStock(ctx, shopID, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFoundError("Order")
	}
	return err
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, shopID, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders lists orders with filtering
func (s *OrderService) ListOrders(ctx context.Context, shopID uuid.UUID, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, shopID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// ListOrdersWithCursor lists orders with cursor-based pagination
func (s *OrderService) ListOrdersWithCursor(ctx context.Context, shopID uuid.UUID, params *repository.OrderCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Order], error) {
	orders, err := s.orderRepo.ListWithCursor(ctx, shopID, params)
	if err != nil {
		return nil, err
	}

	cursorPag, items := pagination.NewCursorPagination(orders, params.Cursor.Limit,
		func(o entity.Order) string { return o.ID.String() },
		func(o entity.Order) time.Time { return o.CreatedAt },
	)

	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}

// mapStockError converts a repository insufficient-stock failure into
// the client-facing rejection, naming the products when known.
func (s *OrderService) mapStockError(err error, productMap map[uuid.UUID]*entity.Product) error {
	var insufficient *repository.InsufficientStockError
	if !errors.As(err, &insufficient) {
		return err
	}
	names := make([]string, 0, len(insufficient.ProductIDs))
	for _, id := range insufficient.ProductIDs {
		if p, ok := productMap[id]; ok {
			names = append(names, p.Name)
		} else {
			names = append(names, id.String())
		}
	}
	return apperror.NewInsufficientStockError(names)
}
