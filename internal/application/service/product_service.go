package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/internal/domain/repository"
	"github.com/lmwati/dukapos-api/pkg/apperror"
	"github.com/lmwati/dukapos-api/pkg/pagination"
	"github.com/lmwati/dukapos-api/pkg/utils"
)

// ProductService handles product catalog operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateProductInput represents the create product input. Prices are in
// major currency units and converted to cents for storage.
type CreateProductInput struct {
	ShopID         uuid.UUID
	CategoryID     *uuid.UUID
	Name           string
	Code           string
	CostPrice      float64
	SellPrice      float64
	FloorPrice     float64
	CurrentStock   int
	StockThreshold int
	Notes          *string
}

func toCents(major float64) int64 {
	return int64(math.Round(major * 100))
}

func validatePrices(sellPrice, floorPrice int64) error {
	if sellPrice < 0 || floorPrice < 0 {
		return apperror.NewBadRequestError("Prices cannot be negative")
	}
	if floorPrice > sellPrice {
		return apperror.NewBusinessRuleError("Floor price cannot exceed sell price")
	}
	return nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	sellPrice := toCents(input.SellPrice)
	floorPrice := toCents(input.FloorPrice)
	if err := validatePrices(sellPrice, floorPrice); err != nil {
		return nil, err
	}
	if input.CurrentStock < 0 {
		return nil, apperror.NewBadRequestError("Stock cannot be negative")
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, input.ShopID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	slug := utils.Slugify(input.Name)
	existing, err := s.productRepo.GetBySlug(ctx, input.ShopID, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product with this name already exists")
	}

	code := input.Code
	if code == "" {
		code = utils.GenerateProductCode()
	} else {
		byCode, err := s.productRepo.GetByCode(ctx, input.ShopID, code)
		if err != nil {
			return nil, err
		}
		if byCode != nil {
			return nil, apperror.NewConflictError("Product with this code already exists")
		}
	}

	product := &entity.Product{
		ShopID:         input.ShopID,
		CategoryID:     input.CategoryID,
		Name:           input.Name,
		Slug:           slug,
		Code:           code,
		CostPrice:      toCents(input.CostPrice),
		SellPrice:      sellPrice,
		FloorPrice:     floorPrice,
		CurrentStock:   input.CurrentStock,
		TotalStock:     input.CurrentStock,
		StockThreshold: input.StockThreshold,
		Notes:          input.Notes,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProductInput represents the update product input. Nil fields
// are left unchanged. Stock is deliberately absent: it moves through
// orders, purchases and the stocktake endpoint only.
type UpdateProductInput struct {
	ShopID         uuid.UUID
	Slug           string
	Name           *string
	CategoryID     *uuid.UUID
	CostPrice      *float64
	SellPrice      *float64
	FloorPrice     *float64
	StockThreshold *int
	Notes          *string
}

// UpdateProduct updates a product's catalog fields
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, input.ShopID, input.Slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if input.Name != nil && *input.Name != product.Name {
		newSlug := utils.Slugify(*input.Name)
		existing, err := s.productRepo.GetBySlug(ctx, input.ShopID, newSlug)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, apperror.NewConflictError("Product with this name already exists")
		}
		product.Name = *input.Name
		product.Slug = newSlug
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, input.ShopID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
		product.CategoryID = input.CategoryID
	}

	if input.CostPrice != nil {
		product.CostPrice = toCents(*input.CostPrice)
	}
	if input.SellPrice != nil {
		product.SellPrice = toCents(*input.SellPrice)
	}
	if input.FloorPrice != nil {
		product.FloorPrice = toCents(*input.FloorPrice)
	}
	if err := validatePrices(product.SellPrice, product.FloorPrice); err != nil {
		return nil, err
	}

	if input.StockThreshold != nil {
		product.StockThreshold = *input.StockThreshold
	}
	if input.Notes != nil {
		product.Notes = input.Notes
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetStock overwrites a product's counted stock (stocktake)
func (s *ProductService) SetStock(ctx context.Context, shopID uuid.UUID, slug string, quantity int) (*entity.Product, error) {
	if quantity < 0 {
		return nil, apperror.NewBadRequestError("Stock cannot be negative")
	}

	product, err := s.productRepo.GetBySlug(ctx, shopID, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if err := s.productRepo.SetStock(ctx, shopID, product.ID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Product")
		}
		return nil, err
	}

	product.CurrentStock = quantity
	return product, nil
}

// GetProduct retrieves a product by slug
func (s *ProductService) GetProduct(ctx context.Context, shopID uuid.UUID, slug string) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, shopID, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// DeleteProduct deletes a product by slug
func (s *ProductService) DeleteProduct(ctx context.Context, shopID uuid.UUID, slug string) error {
	product, err := s.productRepo.GetBySlug(ctx, shopID, slug)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}
	return s.productRepo.Delete(ctx, shopID, product.ID)
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, shopID uuid.UUID, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, shopID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// GetLowStockProducts returns products at or below their threshold
func (s *ProductService) GetLowStockProducts(ctx context.Context, shopID uuid.UUID) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx, shopID)
}
