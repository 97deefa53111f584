// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// CategoryModel represents the categories table in the database.
type CategoryModel struct {
	Code         string    `gorm:"type:varchar(64);primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Bucket       string    `gorm:"type:varchar(16);not null"`
	DisplayOrder int       `gorm:"not null;default:100"`
	Active       bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the CategoryModel.
func (CategoryModel) TableName() string {
	return "categories"
}

// ToEntity converts a CategoryModel to a domain Category entity.
func (m *CategoryModel) ToEntity() *entity.Category {
	return &entity.Category{
		Code:         m.Code,
		Name:         m.Name,
		Bucket:       entity.Bucket(m.Bucket),
		DisplayOrder: m.DisplayOrder,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// CategoryFromEntity creates a CategoryModel from a domain Category entity.
func CategoryFromEntity(category *entity.Category) *CategoryModel {
	return &CategoryModel{
		Code:         category.Code,
		Name:         category.Name,
		Bucket:       string(category.Bucket),
		DisplayOrder: category.DisplayOrder,
		Active:       category.Active,
		CreatedAt:    category.CreatedAt,
		UpdatedAt:    category.UpdatedAt,
	}
}

// SubcategoryModel represents the subcategories table in the database.
type SubcategoryModel struct {
	Code         string    `gorm:"type:varchar(64);primaryKey"`
	CategoryCode string    `gorm:"type:varchar(64);not null;index"`
	Name         string    `gorm:"type:varchar(100);not null"`
	DisplayOrder int       `gorm:"not null;default:100"`
	Active       bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the SubcategoryModel.
func (SubcategoryModel) TableName() string {
	return "subcategories"
}

// ToEntity converts a SubcategoryModel to a domain Subcategory entity.
func (m *SubcategoryModel) ToEntity() *entity.Subcategory {
	return &entity.Subcategory{
		Code:         m.Code,
		CategoryCode: m.CategoryCode,
		Name:         m.Name,
		DisplayOrder: m.DisplayOrder,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// SubcategoryFromEntity creates a SubcategoryModel from a domain Subcategory entity.
func SubcategoryFromEntity(subcategory *entity.Subcategory) *SubcategoryModel {
	return &SubcategoryModel{
		Code:         subcategory.Code,
		CategoryCode: subcategory.CategoryCode,
		Name:         subcategory.Name,
		DisplayOrder: subcategory.DisplayOrder,
		Active:       subcategory.Active,
		CreatedAt:    subcategory.CreatedAt,
		UpdatedAt:    subcategory.UpdatedAt,
	}
}
