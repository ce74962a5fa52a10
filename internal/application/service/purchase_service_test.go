package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/pkg/apperror"
)

type purchaseFixture struct {
	svc    *PurchaseService
	store  *fakeStore
	shopID uuid.UUID
	userID uuid.UUID
}

func newPurchaseFixture() *purchaseFixture {
	store := newFakeStore()
	return &purchaseFixture{
		svc: NewPurchaseService(
			&fakePurchaseRepo{store: store},
			&fakeProductRepo{store: store},
			&fakeSupplierRepo{store: store},
		),
		store:  store,
		shopID: uuid.New(),
		userID: uuid.New(),
	}
}

func (f *purchaseFixture) createPurchase(t *testing.T, items ...PurchaseItemInput) *entity.Purchase {
	t.Helper()
	purchase, err := f.svc.CreatePurchase(context.Background(), &CreatePurchaseInput{
		ShopID: f.shopID,
		UserID: f.userID,
		Items:  items,
	})
	require.NoError(t, err)
	require.NotNil(t, purchase)
	return purchase
}

func TestCreatePurchaseIncrementsStockAndOverwritesCost(t *testing.T) {
	f := newPurchaseFixture()
	soda := f.store.addProduct(entity.Product{
		ShopID:       f.shopID,
		Name:         "soda",
		CurrentStock: 5,
		TotalStock:   5,
		CostPrice:    3000,
	})

	purchase := f.createPurchase(t, PurchaseItemInput{
		ProductID: soda.ID,
		Quantity:  10,
		UnitCost:  25,
	})

	assert.Equal(t, int64(25000), purchase.TotalAmount)
	require.Len(t, purchase.Items, 1)
	assert.Equal(t, int64(2500), purchase.Items[0].UnitCost)
	assert.Equal(t, int64(25000), purchase.Items[0].LineTotal)

	stored := f.store.products[soda.ID]
	assert.Equal(t, 15, stored.CurrentStock)
	assert.Equal(t, 15, stored.TotalStock)
	assert.Equal(t, int64(2500), stored.CostPrice)
}

func TestCreatePurchaseUnknownProduct(t *testing.T) {
	f := newPurchaseFixture()

	_, err := f.svc.CreatePurchase(context.Background(), &CreatePurchaseInput{
		ShopID: f.shopID,
		UserID: f.userID,
		Items:  []PurchaseItemInput{{ProductID: uuid.New(), Quantity: 1, UnitCost: 10}},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestCreatePurchaseUnknownSupplier(t *testing.T) {
	f := newPurchaseFixture()
	soda := f.store.addProduct(entity.Product{ShopID: f.shopID, Name: "soda"})
	missing := uuid.New()

	_, err := f.svc.CreatePurchase(context.Background(), &CreatePurchaseInput{
		ShopID:     f.shopID,
		UserID:     f.userID,
		SupplierID: &missing,
		Items:      []PurchaseItemInput{{ProductID: soda.ID, Quantity: 1, UnitCost: 10}},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestDeletePurchaseWithinWindowReversesStock(t *testing.T) {
	f := newPurchaseFixture()
	soda := f.store.addProduct(entity.Product{ShopID: f.shopID, Name: "soda", CurrentStock: 5})

	purchase := f.createPurchase(t, PurchaseItemInput{ProductID: soda.ID, Quantity: 10, UnitCost: 20})
	require.Equal(t, 15, f.store.stock(soda.ID))

	require.NoError(t, f.svc.DeletePurchase(context.Background(), f.shopID, purchase.ID))
	assert.Equal(t, 5, f.store.stock(soda.ID))
	assert.Empty(t, f.store.purchases)
}

func TestDeletePurchaseAfterWindowIsRejected(t *testing.T) {
	f := newPurchaseFixture()
	soda := f.store.addProduct(entity.Product{ShopID: f.shopID, Name: "soda", CurrentStock: 5})

	purchase := f.createPurchase(t, PurchaseItemInput{ProductID: soda.ID, Quantity: 10, UnitCost: 20})
	f.store.purchases[purchase.ID].CreatedAt = time.Now().Add(-25 * time.Hour)

	err := f.svc.DeletePurchase(context.Background(), f.shopID, purchase.ID)
	require.Error(t, err)

	// a stale delete is a business-rule rejection, not a not-found
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
	assert.Equal(t, 15, f.store.stock(soda.ID))
	assert.Len(t, f.store.purchases, 1)
}

func TestDeletePurchaseGuardedWhenStockAlreadySold(t *testing.T) {
	f := newPurchaseFixture()
	soda := f.store.addProduct(entity.Product{ShopID: f.shopID, Name: "soda", CurrentStock: 5})

	purchase := f.createPurchase(t, PurchaseItemInput{ProductID: soda.ID, Quantity: 10, UnitCost: 20})

	// most of the received stock has since been sold
	f.store.products[soda.ID].CurrentStock = 4

	err := f.svc.DeletePurchase(context.Background(), f.shopID, purchase.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	assert.Equal(t, 4, f.store.stock(soda.ID))
	assert.Len(t, f.store.purchases, 1)
}

func TestDeletePurchaseNotFound(t *testing.T) {
	f := newPurchaseFixture()

	err := f.svc.DeletePurchase(context.Background(), f.shopID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}
