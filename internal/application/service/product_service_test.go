package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmwati/dukapos-api/pkg/apperror"
)

type productFixture struct {
	svc    *ProductService
	store  *fakeStore
	shopID uuid.UUID
}

func newProductFixture() *productFixture {
	store := newFakeStore()
	return &productFixture{
		svc:    NewProductService(&fakeProductRepo{store: store}, newFakeCategoryRepo()),
		store:  store,
		shopID: uuid.New(),
	}
}

func TestCreateProductConvertsPricesToCents(t *testing.T) {
	f := newProductFixture()

	product, err := f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID:       f.shopID,
		Name:         "Fanta 500ml",
		CostPrice:    30,
		SellPrice:    50,
		FloorPrice:   40,
		CurrentStock: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "fanta-500ml", product.Slug)
	assert.Equal(t, int64(3000), product.CostPrice)
	assert.Equal(t, int64(5000), product.SellPrice)
	assert.Equal(t, int64(4000), product.FloorPrice)
	assert.Equal(t, 12, product.CurrentStock)
	assert.Equal(t, 12, product.TotalStock)
	assert.NotEmpty(t, product.Code)
}

func TestToCentsRoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(1999), toCents(19.99))
	assert.Equal(t, int64(7), toCents(0.07))
	// negative amounts must not be pulled a cent toward zero
	assert.Equal(t, int64(-500), toCents(-5.00))
	assert.Equal(t, int64(-1), toCents(-0.01))
}

func TestCreateProductRejectsFloorAboveSell(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID:     f.shopID,
		Name:       "Fanta",
		SellPrice:  50,
		FloorPrice: 60,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestCreateProductDuplicateName(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID: f.shopID, Name: "Fanta", SellPrice: 50,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID: f.shopID, Name: "Fanta", SellPrice: 60,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)
}

func TestUpdateProductValidatesMergedPrices(t *testing.T) {
	f := newProductFixture()

	product, err := f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID:     f.shopID,
		Name:       "Fanta",
		SellPrice:  50,
		FloorPrice: 40,
	})
	require.NoError(t, err)

	// raising only the floor above the existing sell price must fail
	floor := 55.0
	_, err = f.svc.UpdateProduct(context.Background(), &UpdateProductInput{
		ShopID:     f.shopID,
		Slug:       product.Slug,
		FloorPrice: &floor,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestSetStockOverwritesCount(t *testing.T) {
	f := newProductFixture()

	product, err := f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID:       f.shopID,
		Name:         "Fanta",
		SellPrice:    50,
		CurrentStock: 10,
	})
	require.NoError(t, err)

	updated, err := f.svc.SetStock(context.Background(), f.shopID, product.Slug, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.CurrentStock)
	assert.Equal(t, 7, f.store.stock(product.ID))

	_, err = f.svc.SetStock(context.Background(), f.shopID, product.Slug, -1)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestSetStockUnknownProduct(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.SetStock(context.Background(), f.shopID, "missing", 5)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestGetLowStockProducts(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID: f.shopID, Name: "Plenty", SellPrice: 50, CurrentStock: 100, StockThreshold: 5,
	})
	require.NoError(t, err)
	low, err := f.svc.CreateProduct(context.Background(), &CreateProductInput{
		ShopID: f.shopID, Name: "Scarce", SellPrice: 50, CurrentStock: 3, StockThreshold: 5,
	})
	require.NoError(t, err)

	products, err := f.svc.GetLowStockProducts(context.Background(), f.shopID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}
