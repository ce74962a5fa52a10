package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/internal/domain/repository"
	"github.com/lmwati/dukapos-api/pkg/pagination"
)

// fakeStore backs the in-memory repository fakes used by the service
// tests. One store is shared so stock mutations from the order and
// purchase paths are visible to product reads.
type fakeStore struct {
	products  map[uuid.UUID]*entity.Product
	orders    map[uuid.UUID]*entity.Order
	purchases map[uuid.UUID]*entity.Purchase
	suppliers map[uuid.UUID]*entity.Supplier
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  make(map[uuid.UUID]*entity.Product),
		orders:    make(map[uuid.UUID]*entity.Order),
		purchases: make(map[uuid.UUID]*entity.Purchase),
		suppliers: make(map[uuid.UUID]*entity.Supplier),
	}
}

func (s *fakeStore) addProduct(p entity.Product) *entity.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products[p.ID] = &p
	return &p
}

func (s *fakeStore) stock(id uuid.UUID) int {
	if p, ok := s.products[id]; ok {
		return p.CurrentStock
	}
	return -1
}

type fakeProductRepo struct {
	store *fakeStore
}

func (r *fakeProductRepo) Create(_ context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	copied := *product
	r.store.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, shopID, id uuid.UUID) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok || p.ShopID != shopID {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.store.products[id]; ok && p.ShopID == shopID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, shopID uuid.UUID, slug string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if p.ShopID == shopID && p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByCode(_ context.Context, shopID uuid.UUID, code string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if p.ShopID == shopID && p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *entity.Product) error {
	copied := *product
	r.store.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, shopID, id uuid.UUID) error {
	if p, ok := r.store.products[id]; ok && p.ShopID == shopID {
		delete(r.store.products, id)
	}
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, shopID uuid.UUID, _ *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	var out []entity.Product
	for _, p := range r.store.products {
		if p.ShopID == shopID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) GetLowStock(_ context.Context, shopID uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.store.products {
		if p.ShopID == shopID && p.IsLowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SetStock(_ context.Context, shopID, id uuid.UUID, quantity int) error {
	p, ok := r.store.products[id]
	if !ok || p.ShopID != shopID {
		return repository.ErrNotFound
	}
	p.CurrentStock = quantity
	return nil
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*entity.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]*entity.Category)}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *entity.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, shopID, id uuid.UUID) (*entity.Category, error) {
	c, ok := r.categories[id]
	if !ok || c.ShopID != shopID {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, shopID uuid.UUID, slug string) (*entity.Category, error) {
	for _, c := range r.categories {
		if c.ShopID == shopID && c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *entity.Category) error {
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, shopID, id uuid.UUID) error {
	if c, ok := r.categories[id]; ok && c.ShopID == shopID {
		delete(r.categories, id)
	}
	return nil
}

func (r *fakeCategoryRepo) List(_ context.Context, shopID uuid.UUID, _ *pagination.PaginationParams, _ string) ([]entity.Category, int64, error) {
	var out []entity.Category
	for _, c := range r.categories {
		if c.ShopID == shopID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

type fakeOrderRepo struct {
	store *fakeStore
}

// applyGuardedDecrements checks every guard before touching stock, so a
// failed guard leaves the store untouched like a rolled-back transaction.
func (r *fakeOrderRepo) applyGuardedDecrements(shopID uuid.UUID, decrements map[uuid.UUID]int) error {
	var failed []uuid.UUID
	for productID, qty := range decrements {
		p, ok := r.store.products[productID]
		if !ok || p.ShopID != shopID || p.CurrentStock < qty {
			failed = append(failed, productID)
		}
	}
	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i].String() < failed[j].String() })
		return &repository.InsufficientStockError{ProductIDs: failed}
	}
	for productID, qty := range decrements {
		r.store.products[productID].CurrentStock -= qty
	}
	return nil
}

func (r *fakeOrderRepo) CreateWithItems(_ context.Context, order *entity.Order, decrements map[uuid.UUID]int) error {
	if err := r.applyGuardedDecrements(order.ShopID, decrements); err != nil {
		return err
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	copied := *order
	copied.Items = append([]entity.OrderItem(nil), order.Items...)
	r.store.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) UpdateWithStockDeltas(_ context.Context, order *entity.Order, items []entity.OrderItem, removeIDs []uuid.UUID, deltas map[uuid.UUID]int) error {
	decrements := make(map[uuid.UUID]int)
	for productID, delta := range deltas {
		if delta < 0 {
			decrements[productID] = -delta
		}
	}
	if err := r.applyGuardedDecrements(order.ShopID, decrements); err != nil {
		return err
	}
	for productID, delta := range deltas {
		if delta > 0 {
			if p, ok := r.store.products[productID]; ok && p.ShopID == order.ShopID {
				p.CurrentStock += delta
			}
		}
	}

	stored, ok := r.store.orders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.TotalItems = order.TotalItems
	stored.Subtotal = order.Subtotal
	stored.DiscountAmount = order.DiscountAmount
	stored.DiscountType = order.DiscountType
	stored.TotalAmount = order.TotalAmount
	stored.Items = append([]entity.OrderItem(nil), items...)
	return nil
}

func (r *fakeOrderRepo) DeleteRestoringStock(_ context.Context, shopID, id uuid.UUID) error {
	order, ok := r.store.orders[id]
	if !ok || order.ShopID != shopID {
		return repository.ErrNotFound
	}
	for _, item := range order.Items {
		if p, exists := r.store.products[item.ProductID]; exists && p.ShopID == shopID {
			p.CurrentStock += item.Quantity
		}
	}
	delete(r.store.orders, id)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, shopID, id uuid.UUID) (*entity.Order, error) {
	order, ok := r.store.orders[id]
	if !ok || order.ShopID != shopID {
		return nil, nil
	}
	copied := *order
	copied.Items = append([]entity.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (r *fakeOrderRepo) GetByOrderNo(_ context.Context, shopID uuid.UUID, orderNo string) (*entity.Order, error) {
	for _, order := range r.store.orders {
		if order.ShopID == shopID && order.OrderNo == orderNo {
			copied := *order
			copied.Items = append([]entity.OrderItem(nil), order.Items...)
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) List(_ context.Context, shopID uuid.UUID, _ *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	var out []entity.Order
	for _, order := range r.store.orders {
		if order.ShopID == shopID {
			copied := *order
			copied.Items = append([]entity.OrderItem(nil), order.Items...)
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.Before(out[j].OrderDate) })
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) ListWithCursor(_ context.Context, shopID uuid.UUID, params *repository.OrderCursorFilterParams) ([]entity.Order, error) {
	var out []entity.Order
	for _, order := range r.store.orders {
		if order.ShopID == shopID {
			out = append(out, *order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > params.Cursor.Limit+1 {
		out = out[:params.Cursor.Limit+1]
	}
	return out, nil
}

type fakePurchaseRepo struct {
	store *fakeStore
}

func (r *fakePurchaseRepo) CreateWithItems(_ context.Context, purchase *entity.Purchase, increments map[uuid.UUID]int, unitCosts map[uuid.UUID]int64) error {
	for productID := range increments {
		p, ok := r.store.products[productID]
		if !ok || p.ShopID != purchase.ShopID {
			return repository.ErrNotFound
		}
	}
	for productID, qty := range increments {
		p := r.store.products[productID]
		p.CurrentStock += qty
		p.TotalStock += qty
		p.CostPrice = unitCosts[productID]
	}
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}
	for i := range purchase.Items {
		if purchase.Items[i].ID == uuid.Nil {
			purchase.Items[i].ID = uuid.New()
		}
		purchase.Items[i].PurchaseID = purchase.ID
	}
	copied := *purchase
	copied.Items = append([]entity.PurchaseItem(nil), purchase.Items...)
	r.store.purchases[purchase.ID] = &copied
	return nil
}

func (r *fakePurchaseRepo) DeleteReversingStock(_ context.Context, shopID, id uuid.UUID) error {
	purchase, ok := r.store.purchases[id]
	if !ok || purchase.ShopID != shopID {
		return repository.ErrNotFound
	}

	var failed []uuid.UUID
	for _, item := range purchase.Items {
		p, exists := r.store.products[item.ProductID]
		if !exists || p.ShopID != shopID || p.CurrentStock < item.Quantity {
			failed = append(failed, item.ProductID)
		}
	}
	if len(failed) > 0 {
		return &repository.InsufficientStockError{ProductIDs: failed}
	}

	for _, item := range purchase.Items {
		r.store.products[item.ProductID].CurrentStock -= item.Quantity
	}
	delete(r.store.purchases, id)
	return nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, shopID, id uuid.UUID) (*entity.Purchase, error) {
	purchase, ok := r.store.purchases[id]
	if !ok || purchase.ShopID != shopID {
		return nil, nil
	}
	copied := *purchase
	copied.Items = append([]entity.PurchaseItem(nil), purchase.Items...)
	return &copied, nil
}

func (r *fakePurchaseRepo) List(_ context.Context, shopID uuid.UUID, _ *repository.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var out []entity.Purchase
	for _, purchase := range r.store.purchases {
		if purchase.ShopID == shopID {
			out = append(out, *purchase)
		}
	}
	return out, int64(len(out)), nil
}

type fakeSupplierRepo struct {
	store *fakeStore
}

func (r *fakeSupplierRepo) Create(_ context.Context, supplier *entity.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	copied := *supplier
	r.store.suppliers[supplier.ID] = &copied
	return nil
}

func (r *fakeSupplierRepo) GetByID(_ context.Context, shopID, id uuid.UUID) (*entity.Supplier, error) {
	s, ok := r.store.suppliers[id]
	if !ok || s.ShopID != shopID {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSupplierRepo) Update(_ context.Context, supplier *entity.Supplier) error {
	copied := *supplier
	r.store.suppliers[supplier.ID] = &copied
	return nil
}

func (r *fakeSupplierRepo) Delete(_ context.Context, shopID, id uuid.UUID) error {
	if s, ok := r.store.suppliers[id]; ok && s.ShopID == shopID {
		delete(r.store.suppliers, id)
	}
	return nil
}

func (r *fakeSupplierRepo) List(_ context.Context, shopID uuid.UUID, _ *pagination.PaginationParams, _ string) ([]entity.Supplier, int64, error) {
	var out []entity.Supplier
	for _, s := range r.store.suppliers {
		if s.ShopID == shopID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}
