// Package category contains category-related use cases.
package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

const (
	// MaxCategoryNameLength is the maximum allowed length for category names.
	MaxCategoryNameLength = 100
)

// CreateCategoryInput represents the input for category creation.
type CreateCategoryInput struct {
	Code         string
	Name         string // Optional, derived from Code
	Bucket       entity.Bucket
	DisplayOrder *int
}

// CreateCategoryOutput represents the output of category creation.
type CreateCategoryOutput struct {
	Category *entity.Category
}

// CreateCategoryUseCase handles category creation logic.
type CreateCategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewCreateCategoryUseCase creates a new CreateCategoryUseCase instance.
func NewCreateCategoryUseCase(categoryRepo adapter.CategoryRepository) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{
		categoryRepo: categoryRepo,
	}
}

// Execute performs the category creation.
func (uc *CreateCategoryUseCase) Execute(ctx context.Context, input CreateCategoryInput) (*CreateCategoryOutput, error) {
	if !IsValidCode(input.Code) {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeInvalidCategoryCode,
			"code must be lowercase snake_case",
			domainerror.ErrInvalidCategoryCode,
		)
	}

	if !input.Bucket.IsValid() {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeInvalidBucket,
			"bucket must be one of income, needs, wants, assets, transfers",
			domainerror.ErrInvalidBucket,
		)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = DisplayName(input.Code)
	}
	if len(name) > MaxCategoryNameLength {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeMissingCategoryFields,
			fmt.Sprintf("category name must not exceed %d characters", MaxCategoryNameLength),
			nil,
		)
	}

	_, err := uc.categoryRepo.FindByCode(ctx, input.Code)
	if err == nil {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryCodeExists,
			"a category with this code already exists",
			domainerror.ErrCategoryCodeExists,
		)
	}
	if !errors.Is(err, domainerror.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to check category existence: %w", err)
	}

	displayOrder := entity.DefaultDisplayOrder
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	}

	category := entity.NewCategory(input.Code, name, input.Bucket, displayOrder)
	if err := uc.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &CreateCategoryOutput{
		Category: category,
	}, nil
}

// CreateSubcategoryInput represents the input for subcategory creation.
type CreateSubcategoryInput struct {
	Code         string
	CategoryCode string
	Name         string // Optional, derived from Code
	DisplayOrder *int
}

// CreateSubcategoryOutput represents the output of subcategory creation.
type CreateSubcategoryOutput struct {
	Subcategory *entity.Subcategory
}

// CreateSubcategoryUseCase handles subcategory creation logic.
type CreateSubcategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewCreateSubcategoryUseCase creates a new CreateSubcategoryUseCase instance.
func NewCreateSubcategoryUseCase(categoryRepo adapter.CategoryRepository) *CreateSubcategoryUseCase {
	return &CreateSubcategoryUseCase{
		categoryRepo: categoryRepo,
	}
}

// Execute performs the subcategory creation.
func (uc *CreateSubcategoryUseCase) Execute(ctx context.Context, input CreateSubcategoryInput) (*CreateSubcategoryOutput, error) {
	if !IsValidCode(input.Code) {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeInvalidCategoryCode,
			"code must be lowercase snake_case",
			domainerror.ErrInvalidCategoryCode,
		)
	}

	parent, err := uc.categoryRepo.FindByCode(ctx, input.CategoryCode)
	if err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryNotFound,
				"category not found",
				domainerror.ErrCategoryNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	existing, err := uc.categoryRepo.FindSubcategoryByCode(ctx, input.Code)
	if err == nil {
		if existing.CategoryCode != parent.Code {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeSubcategoryMismatch,
				"subcategory code is already used by category "+existing.CategoryCode,
				domainerror.ErrSubcategoryCategoryMismatch,
			)
		}
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryCodeExists,
			"a subcategory with this code already exists",
			domainerror.ErrCategoryCodeExists,
		)
	}
	if !errors.Is(err, domainerror.ErrSubcategoryNotFound) {
		return nil, fmt.Errorf("failed to check subcategory existence: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = DisplayName(input.Code)
	}
	displayOrder := entity.DefaultDisplayOrder
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	}

	subcategory := entity.NewSubcategory(input.Code, parent.Code, name, displayOrder)
	if err := uc.categoryRepo.CreateSubcategory(ctx, subcategory); err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}

	return &CreateSubcategoryOutput{
		Subcategory: subcategory,
	}, nil
}
