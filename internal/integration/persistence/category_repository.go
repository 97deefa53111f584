package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/persistence/model"
)

// categoryRepository implements the adapter.CategoryRepository interface.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository instance.
func NewCategoryRepository(db *gorm.DB) adapter.CategoryRepository {
	return &categoryRepository{
		db: db,
	}
}

// FindByCode retrieves a category by its code.
func (r *categoryRepository) FindByCode(ctx context.Context, code string) (*entity.Category, error) {
	var categoryModel model.CategoryModel
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&categoryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrCategoryNotFound
		}
		return nil, result.Error
	}
	return categoryModel.ToEntity(), nil
}

// FindSubcategoryByCode retrieves a subcategory by its code.
func (r *categoryRepository) FindSubcategoryByCode(ctx context.Context, code string) (*entity.Subcategory, error) {
	var subcategoryModel model.SubcategoryModel
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&subcategoryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSubcategoryNotFound
		}
		return nil, result.Error
	}
	return subcategoryModel.ToEntity(), nil
}

// ListWithSubcategories retrieves categories and their subcategories ordered for display.
func (r *categoryRepository) ListWithSubcategories(ctx context.Context, includeInactive bool) ([]*entity.CategoryWithSubcategories, error) {
	categoryQuery := r.db.WithContext(ctx).Order("display_order ASC, code ASC")
	subcategoryQuery := r.db.WithContext(ctx).Order("display_order ASC, code ASC")
	if !includeInactive {
		categoryQuery = categoryQuery.Where("active = ?", true)
		subcategoryQuery = subcategoryQuery.Where("active = ?", true)
	}

	var categoryModels []model.CategoryModel
	if err := categoryQuery.Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	var subcategoryModels []model.SubcategoryModel
	if err := subcategoryQuery.Find(&subcategoryModels).Error; err != nil {
		return nil, err
	}

	byCategory := make(map[string][]*entity.Subcategory)
	for i := range subcategoryModels {
		sub := subcategoryModels[i].ToEntity()
		byCategory[sub.CategoryCode] = append(byCategory[sub.CategoryCode], sub)
	}

	categories := make([]*entity.CategoryWithSubcategories, len(categoryModels))
	for i := range categoryModels {
		category := categoryModels[i].ToEntity()
		categories[i] = &entity.CategoryWithSubcategories{
			Category:      category,
			Subcategories: byCategory[category.Code],
		}
	}
	return categories, nil
}

// Create creates a new category in the database.
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Create(model.CategoryFromEntity(category))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerror.ErrCategoryCodeExists
		}
		return result.Error
	}
	return nil
}

// CreateSubcategory creates a new subcategory in the database.
func (r *categoryRepository) CreateSubcategory(ctx context.Context, subcategory *entity.Subcategory) error {
	result := r.db.WithContext(ctx).Create(model.SubcategoryFromEntity(subcategory))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerror.ErrCategoryCodeExists
		}
		return result.Error
	}
	return nil
}

// Update updates an existing category in the database.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("code = ?", category.Code).
		Updates(map[string]any{
			"name":          category.Name,
			"bucket":        string(category.Bucket),
			"display_order": category.DisplayOrder,
			"active":        category.Active,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrCategoryNotFound
	}
	return nil
}

// EnsureCategory inserts the category when absent and returns the stored row.
func (r *categoryRepository) EnsureCategory(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	return ensureCategory(r.db.WithContext(ctx), category)
}

// EnsureSubcategory inserts the subcategory when absent and returns the stored row.
func (r *categoryRepository) EnsureSubcategory(ctx context.Context, subcategory *entity.Subcategory) (*entity.Subcategory, error) {
	return ensureSubcategory(r.db.WithContext(ctx), subcategory)
}

// ensureCategory never overwrites an existing row, so curated names and buckets survive
// implicit creation by the loader.
func ensureCategory(tx *gorm.DB, category *entity.Category) (*entity.Category, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model.CategoryFromEntity(category)).Error; err != nil {
		return nil, err
	}
	var stored model.CategoryModel
	if err := tx.Where("code = ?", category.Code).First(&stored).Error; err != nil {
		return nil, err
	}
	return stored.ToEntity(), nil
}

func ensureSubcategory(tx *gorm.DB, subcategory *entity.Subcategory) (*entity.Subcategory, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model.SubcategoryFromEntity(subcategory)).Error; err != nil {
		return nil, err
	}
	var stored model.SubcategoryModel
	if err := tx.Where("code = ?", subcategory.Code).First(&stored).Error; err != nil {
		return nil, err
	}
	return stored.ToEntity(), nil
}
