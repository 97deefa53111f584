// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// CategoryRepository defines the interface for category reference data operations.
type CategoryRepository interface {
	// FindByCode retrieves a category by its code.
	FindByCode(ctx context.Context, code string) (*entity.Category, error)

	// FindSubcategoryByCode retrieves a subcategory by its code.
	FindSubcategoryByCode(ctx context.Context, code string) (*entity.Subcategory, error)

	// ListWithSubcategories retrieves categories with their subcategories ordered by display order.
	ListWithSubcategories(ctx context.Context, includeInactive bool) ([]*entity.CategoryWithSubcategories, error)

	// Create creates a new category.
	Create(ctx context.Context, category *entity.Category) error

	// CreateSubcategory creates a new subcategory.
	CreateSubcategory(ctx context.Context, subcategory *entity.Subcategory) error

	// Update updates name, bucket, display order and active flag of a category.
	Update(ctx context.Context, category *entity.Category) error

	// EnsureCategory inserts the category when its code is absent and returns the stored row.
	EnsureCategory(ctx context.Context, category *entity.Category) (*entity.Category, error)

	// EnsureSubcategory inserts the subcategory when its code is absent and returns the stored row.
	EnsureSubcategory(ctx context.Context, subcategory *entity.Subcategory) (*entity.Subcategory, error)
}
