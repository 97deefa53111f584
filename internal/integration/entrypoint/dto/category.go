package dto

import (
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// CreateCategoryRequest represents the request body for category creation.
type CreateCategoryRequest struct {
	Code         string `json:"code" binding:"required,min=1,max=64"`
	Name         string `json:"name,omitempty" binding:"omitempty,max=100"`
	Bucket       string `json:"bucket" binding:"required,oneof=income needs wants assets transfers"`
	DisplayOrder *int   `json:"display_order,omitempty"`
}

// CreateSubcategoryRequest represents the request body for subcategory creation.
type CreateSubcategoryRequest struct {
	Code         string `json:"code" binding:"required,min=1,max=64"`
	Name         string `json:"name,omitempty" binding:"omitempty,max=100"`
	DisplayOrder *int   `json:"display_order,omitempty"`
}

// UpdateCategoryRequest represents the request body for category update.
type UpdateCategoryRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Bucket       *string `json:"bucket,omitempty" binding:"omitempty,oneof=income needs wants assets transfers"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

// SubcategoryResponse represents a subcategory in API responses.
type SubcategoryResponse struct {
	Code         string `json:"code"`
	CategoryCode string `json:"category_code"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	Active       bool   `json:"active"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	Code          string                `json:"code"`
	Name          string                `json:"name"`
	Bucket        string                `json:"bucket"`
	DisplayOrder  int                   `json:"display_order"`
	Active        bool                  `json:"active"`
	Subcategories []SubcategoryResponse `json:"subcategories,omitempty"`
}

// CategoryListResponse represents the response for listing categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// ToCategoryResponse converts a domain Category entity to a CategoryResponse DTO.
func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		Code:         c.Code,
		Name:         c.Name,
		Bucket:       string(c.Bucket),
		DisplayOrder: c.DisplayOrder,
		Active:       c.Active,
	}
}

// ToSubcategoryResponse converts a domain Subcategory entity to a SubcategoryResponse DTO.
func ToSubcategoryResponse(s *entity.Subcategory) SubcategoryResponse {
	return SubcategoryResponse{
		Code:         s.Code,
		CategoryCode: s.CategoryCode,
		Name:         s.Name,
		DisplayOrder: s.DisplayOrder,
		Active:       s.Active,
	}
}

// ToCategoryListResponse converts categories with subcategories to a CategoryListResponse DTO.
func ToCategoryListResponse(categories []*entity.CategoryWithSubcategories) CategoryListResponse {
	response := CategoryListResponse{Categories: make([]CategoryResponse, 0, len(categories))}
	for _, c := range categories {
		item := ToCategoryResponse(c.Category)
		for _, s := range c.Subcategories {
			item.Subcategories = append(item.Subcategories, ToSubcategoryResponse(s))
		}
		response.Categories = append(response.Categories, item)
	}
	return response
}
