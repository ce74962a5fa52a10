package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/internal/domain/repository"
	"github.com/lmwati/dukapos-api/pkg/apperror"
	"github.com/lmwati/dukapos-api/pkg/pagination"
	"github.com/lmwati/dukapos-api/pkg/utils"
)

// CategoryService handles category operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, shopID uuid.UUID, name string) (*entity.Category, error) {
	slug := utils.Slugify(name)
	existing, err := s.categoryRepo.GetBySlug(ctx, shopID, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category already exists")
	}

	category := &entity.Category{
		ShopID: shopID,
		Name:   name,
		Slug:   slug,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames a category
func (s *CategoryService) UpdateCategory(ctx context.Context, shopID, id uuid.UUID, name string) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}

	newSlug := utils.Slugify(name)
	if newSlug != category.Slug {
		existing, err := s.categoryRepo.GetBySlug(ctx, shopID, newSlug)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != category.ID {
			return nil, apperror.NewConflictError("Category already exists")
		}
	}

	category.Name = name
	category.Slug = newSlug
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category
func (s *CategoryService) DeleteCategory(ctx context.Context, shopID, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, shopID, id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	return s.categoryRepo.Delete(ctx, shopID, id)
}

// ListCategories lists categories with pagination and search
func (s *CategoryService) ListCategories(ctx context.Context, shopID uuid.UUID, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Category], error) {
	categories, total, err := s.categoryRepo.List(ctx, shopID, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(categories, pag), nil
}
