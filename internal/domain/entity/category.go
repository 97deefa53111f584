// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"
)

// Bucket is the downstream budgeting classification of a category.
type Bucket string

const (
	BucketIncome    Bucket = "income"
	BucketNeeds     Bucket = "needs"
	BucketWants     Bucket = "wants"
	BucketAssets    Bucket = "assets"
	BucketTransfers Bucket = "transfers"
)

// IsValid reports whether the bucket is one of the known buckets.
func (b Bucket) IsValid() bool {
	switch b {
	case BucketIncome, BucketNeeds, BucketWants, BucketAssets, BucketTransfers:
		return true
	}
	return false
}

// DefaultDisplayOrder is used for categories created without an explicit order.
const DefaultDisplayOrder = 100

// Category is a reference dimension row keyed by its code.
type Category struct {
	Code         string
	Name         string
	Bucket       Bucket
	DisplayOrder int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCategory creates a new active Category.
func NewCategory(code, name string, bucket Bucket, displayOrder int) *Category {
	now := time.Now().UTC()

	return &Category{
		Code:         code,
		Name:         name,
		Bucket:       bucket,
		DisplayOrder: displayOrder,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	Code         string
	CategoryCode string
	Name         string
	DisplayOrder int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSubcategory creates a new active Subcategory under categoryCode.
func NewSubcategory(code, categoryCode, name string, displayOrder int) *Subcategory {
	now := time.Now().UTC()

	return &Subcategory{
		Code:         code,
		CategoryCode: categoryCode,
		Name:         name,
		DisplayOrder: displayOrder,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CategoryWithSubcategories groups a category with its children.
type CategoryWithSubcategories struct {
	Category      *Category
	Subcategories []*Subcategory
}
