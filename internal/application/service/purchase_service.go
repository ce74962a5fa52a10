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
	"github.com/lmwati/dukapos-api/pkg/utils"
)

// PurchaseService handles stock intake from suppliers
type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
	}
}

// PurchaseItemInput represents a received line. UnitCost is in major
// currency units.
type PurchaseItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  float64
}

// CreatePurchaseInput represents the create purchase input
type CreatePurchaseInput struct {
	ShopID     uuid.UUID
	UserID     uuid.UUID
	SupplierID *uuid.UUID
	Notes      *string
	Items      []PurchaseItemInput
}

// CreatePurchase records a received shipment: stock and lifetime totals
// increment and each product's cost price is overwritten with the new
// unit cost, atomically with the purchase rows.
func (s *PurchaseService) CreatePurchase(ctx context.Context, input *CreatePurchaseInput) (*entity.Purchase, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Purchase has no items")
	}

	if input.SupplierID != nil {
		supplier, err := s.supplierRepo.GetByID(ctx, input.ShopID, *input.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, apperror.NewNotFoundError("Supplier")
		}
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Item quantity must be positive")
		}
		if item.UnitCost < 0 {
			return nil, apperror.NewBadRequestError("Unit cost cannot be negative")
		}
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

	var totalAmount int64
	purchaseItems := make([]entity.PurchaseItem, 0, len(input.Items))
	increments := make(map[uuid.UUID]int, len(input.Items))
	unitCosts := make(map[uuid.UUID]int64, len(input.Items))

	for _, item := range input.Items {
		if _, exists := productMap[item.ProductID]; !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}

		unitCostCents := toCents(item.UnitCost)
		lineTotal := unitCostCents * int64(item.Quantity)
		totalAmount += lineTotal

		purchaseItems = append(purchaseItems, entity.PurchaseItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  unitCostCents,
			LineTotal: lineTotal,
		})
		increments[item.ProductID] += item.Quantity
		unitCosts[item.ProductID] = unitCostCents
	}

	purchase := &entity.Purchase{
		ShopID:      input.ShopID,
		UserID:      input.UserID,
		SupplierID:  input.SupplierID,
		PurchaseNo:  utils.GenerateReferenceNo("PUR"),
		ReceivedAt:  time.Now(),
		TotalAmount: totalAmount,
		Notes:       input.Notes,
		Items:       purchaseItems,
	}

	if err := s.purchaseRepo.CreateWithItems(ctx, purchase, increments, unitCosts); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Product")
		}
		return nil, err
	}

	return s.purchaseRepo.GetByID(ctx, input.ShopID, purchase.ID)
}

// DeletePurchase reverses a received shipment. Allowed only within 24
// hours of creation; later deletions are a business-rule rejection, not
// a not-found.
func (s *PurchaseService) DeletePurchase(ctx context.Context, shopID, id uuid.UUID) error {
	purchase, err := s.purchaseRepo.GetByID(ctx, shopID, id)
	if err != nil {
		return err
	}
	if purchase == nil {
		return apperror.NewNotFoundError("Purchase")
	}

	if time.Now().After(purchase.DeletableUntil()) {
		return apperror.NewBusinessRuleError("Purchases can only be deleted within 24 hours of creation")
	}

	err = s.purchaseRepo.DeleteReversingStock(ctx, shopID, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFoundError("Purchase")
	}

	var insufficient *repository.InsufficientStockError
	if errors.As(err, &insufficient) {
		return apperror.NewBusinessRuleError("Cannot reverse purchase: received stock has already been sold")
	}
	return err
}

// GetPurchase retrieves a purchase by ID
func (s *PurchaseService) GetPurchase(ctx context.Context, shopID, id uuid.UUID) (*entity.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}
	return purchase, nil
}

// ListPurchases lists purchases with filtering
func (s *PurchaseService) ListPurchases(ctx context.Context, shopID uuid.UUID, params *repository.PurchaseFilterParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	purchases, total, err := s.purchaseRepo.List(ctx, shopID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(purchases, pag), nil
}
