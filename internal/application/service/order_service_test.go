package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/pkg/apperror"
	"github.com/lmwati/dukapos-api/pkg/pricing"
)

type orderFixture struct {
	svc    *OrderService
	store  *fakeStore
	shopID uuid.UUID
	userID uuid.UUID
}

func newOrderFixture() *orderFixture {
	store := newFakeStore()
	return &orderFixture{
		svc:    NewOrderService(&fakeOrderRepo{store: store}, &fakeProductRepo{store: store}),
		store:  store,
		shopID: uuid.New(),
		userID: uuid.New(),
	}
}

func (f *orderFixture) addProduct(name string, sell, floor, cost int64, stock int) *entity.Product {
	return f.store.addProduct(entity.Product{
		ShopID:       f.shopID,
		Name:         name,
		Slug:         name,
		Code:         name,
		SellPrice:    sell,
		FloorPrice:   floor,
		CostPrice:    cost,
		CurrentStock: stock,
	})
}

func (f *orderFixture) createOrder(t *testing.T, discount pricing.Discount, items ...OrderItemInput) *entity.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), &CreateOrderInput{
		ShopID:   f.shopID,
		UserID:   f.userID,
		Discount: discount,
		Items:    items,
	})
	require.NoError(t, err)
	require.NotNil(t, order)
	return order
}

func TestCreateOrderComputesTotalsAndDecrementsStock(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)
	bread := f.addProduct("bread", 3000, 2500, 2000, 5)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 2},
		OrderItemInput{ProductID: bread.ID, Quantity: 1},
	)

	assert.Equal(t, int64(13000), order.Subtotal)
	assert.Equal(t, int64(0), order.DiscountAmount)
	assert.Equal(t, int64(13000), order.TotalAmount)
	assert.Equal(t, 3, order.TotalItems)
	assert.Equal(t, pricing.DiscountTypeFixed, order.DiscountType)
	require.Len(t, order.Items, 2)

	assert.Equal(t, "soda", order.Items[0].ProductName)
	assert.Equal(t, int64(5000), order.Items[0].SoldAt)
	assert.Equal(t, int64(3000), order.Items[0].CostAtSale)
	assert.Equal(t, int64(10000), order.Items[0].LineTotal)

	assert.Equal(t, 8, f.store.stock(soda.ID))
	assert.Equal(t, 4, f.store.stock(bread.ID))
}

func TestCreateOrderFixedDiscountWithinMax(t *testing.T) {
	f := newOrderFixture()
	tv := f.addProduct("tv", 100000, 85000, 60000, 5)

	order := f.createOrder(t, pricing.Discount{Value: 100, Type: pricing.DiscountTypeFixed},
		OrderItemInput{ProductID: tv.ID, Quantity: 1},
	)

	assert.Equal(t, int64(100000), order.Subtotal)
	assert.Equal(t, int64(10000), order.DiscountAmount)
	assert.Equal(t, int64(90000), order.TotalAmount)
	assert.Equal(t, pricing.DiscountTypeFixed, order.DiscountType)
}

func TestCreateOrderDiscountExceedsMaxIsRejected(t *testing.T) {
	f := newOrderFixture()
	tv := f.addProduct("tv", 100000, 85000, 60000, 5)

	// 20% of 1000.00 is 200.00 but headroom is only 150.00
	_, err := f.svc.CreateOrder(context.Background(), &CreateOrderInput{
		ShopID:   f.shopID,
		UserID:   f.userID,
		Discount: pricing.Discount{Value: 20, Type: pricing.DiscountTypePercent},
		Items:    []OrderItemInput{{ProductID: tv.ID, Quantity: 1}},
	})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, 150.0, appErr.Details["max_discount"])

	// rejection must not touch stock
	assert.Equal(t, 5, f.store.stock(tv.ID))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	_, err := f.svc.CreateOrder(context.Background(), &CreateOrderInput{
		ShopID: f.shopID,
		UserID: f.userID,
		Items:  []OrderItemInput{{ProductID: soda.ID, Quantity: 11}},
	})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Contains(t, appErr.Message, "soda")

	assert.Equal(t, 10, f.store.stock(soda.ID))
	assert.Empty(t, f.store.orders)
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 1},
		OrderItemInput{ProductID: soda.ID, Quantity: 2},
	)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 7, f.store.stock(soda.ID))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.CreateOrder(context.Background(), &CreateOrderInput{
		ShopID: f.shopID,
		UserID: f.userID,
		Items:  []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestDeleteOrderRestoresStockOnce(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 2},
	)
	require.Equal(t, 8, f.store.stock(soda.ID))

	require.NoError(t, f.svc.DeleteOrder(context.Background(), f.shopID, order.ID))
	assert.Equal(t, 10, f.store.stock(soda.ID))

	// deleting again is not-found and must not restore stock twice
	err := f.svc.DeleteOrder(context.Background(), f.shopID, order.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	assert.Equal(t, 10, f.store.stock(soda.ID))
}

func TestUpdateOrderReducedQuantityRestoresStock(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 5},
	)
	require.Equal(t, 5, f.store.stock(soda.ID))

	updated, err := f.svc.UpdateOrder(context.Background(), &UpdateOrderInput{
		ShopID:  f.shopID,
		OrderID: order.ID,
		Items:   []OrderItemEditInput{{ItemID: order.Items[0].ID, NewQuantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, f.store.stock(soda.ID))
	assert.Equal(t, 3, updated.TotalItems)
	assert.Equal(t, int64(15000), updated.Subtotal)
	assert.Equal(t, int64(15000), updated.TotalAmount)
}

func TestUpdateOrderIncreasedQuantityIsGuarded(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 3},
	)
	require.Equal(t, 7, f.store.stock(soda.ID))

	// needs 9 more units but only 7 remain
	_, err := f.svc.UpdateOrder(context.Background(), &UpdateOrderInput{
		ShopID:  f.shopID,
		OrderID: order.ID,
		Items:   []OrderItemEditInput{{ItemID: order.Items[0].ID, NewQuantity: 12}},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	assert.Equal(t, 7, f.store.stock(soda.ID))
	unchanged, err := f.svc.GetOrder(context.Background(), f.shopID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unchanged.Items[0].Quantity)
}

func TestUpdateOrderIncreasedQuantityDecrementsDelta(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 3},
	)
	require.Equal(t, 7, f.store.stock(soda.ID))

	updated, err := f.svc.UpdateOrder(context.Background(), &UpdateOrderInput{
		ShopID:  f.shopID,
		OrderID: order.ID,
		Items:   []OrderItemEditInput{{ItemID: order.Items[0].ID, NewQuantity: 5}},
	})
	require.NoError(t, err)

	// going from 3 to 5 takes exactly 2 more units
	assert.Equal(t, 5, f.store.stock(soda.ID))
	assert.Equal(t, 5, updated.Items[0].Quantity)
	assert.Equal(t, int64(25000), updated.Subtotal)
	assert.Equal(t, int64(25000), updated.TotalAmount)
}

func TestUpdateOrderZeroQuantityRemovesLine(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)
	bread := f.addProduct("bread", 3000, 2500, 2000, 5)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 2},
		OrderItemInput{ProductID: bread.ID, Quantity: 1},
	)

	var breadItem entity.OrderItem
	for _, item := range order.Items {
		if item.ProductID == bread.ID {
			breadItem = item
		}
	}
	require.NotEqual(t, uuid.Nil, breadItem.ID)

	updated, err := f.svc.UpdateOrder(context.Background(), &UpdateOrderInput{
		ShopID:  f.shopID,
		OrderID: order.ID,
		Items:   []OrderItemEditInput{{ItemID: breadItem.ID, NewQuantity: 0}},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, soda.ID, updated.Items[0].ProductID)
	assert.Equal(t, int64(10000), updated.Subtotal)
	assert.Equal(t, 5, f.store.stock(bread.ID))
	assert.Equal(t, 8, f.store.stock(soda.ID))
}

func TestUpdateOrderUsesSoldAtPricesNotCurrent(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 2},
	)

	// raise the shelf price after the sale; the edit must still price
	// the line at what the customer paid
	f.store.products[soda.ID].SellPrice = 9000

	updated, err := f.svc.UpdateOrder(context.Background(), &UpdateOrderInput{
		ShopID:  f.shopID,
		OrderID: order.ID,
		Items:   []OrderItemEditInput{{ItemID: order.Items[0].ID, NewQuantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(15000), updated.Subtotal)
	assert.Equal(t, int64(5000), updated.Items[0].SoldAt)
}

func TestUpdateOrderUnknownItem(t *testing.T) {
	f := newOrderFixture()
	soda := f.addProduct("soda", 5000, 4000, 3000, 10)

	order := f.createOrder(t, pricing.Discount{},
		OrderItemInput{ProductID: soda.ID, Quantity: 1},
	)

	_, err := f.svc.UpdateOrder(context.Background(), &UpdateOrderInput{
		ShopID:  f.shopID,
		OrderID: order.ID,
		Items:   []OrderItemEditInput{{ItemID: uuid.New(), NewQuantity: 2}},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestPreviewCartAutoClampsOversizedDiscount(t *testing.T) {
	f := newOrderFixture()
	tv := f.addProduct("tv", 100000, 85000, 60000, 5)

	res, err := f.svc.PreviewCart(context.Background(), f.shopID,
		[]OrderItemInput{{ProductID: tv.ID, Quantity: 1}},
		pricing.Discount{Value: 20, Type: pricing.DiscountTypePercent},
	)
	require.NoError(t, err)

	assert.Equal(t, int64(15000), res.Discount)
	assert.Equal(t, int64(85000), res.GrandTotal)
	assert.Equal(t, pricing.DiscountTypeFixed, res.AppliedType)

	// preview never moves stock
	assert.Equal(t, 5, f.store.stock(tv.ID))
}

func TestPreviewCartEmpty(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.PreviewCart(context.Background(), f.shopID, nil, pricing.Discount{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}
