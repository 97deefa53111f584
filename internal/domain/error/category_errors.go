// Package error defines domain-specific errors for the categorization engine.
package error

import "errors"

// Category domain errors.
var (
	// ErrCategoryNotFound is returned when a category is not found in the system.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryInactive is returned when a category exists but is disabled.
	ErrCategoryInactive = errors.New("category inactive")

	// ErrSubcategoryNotFound is returned when a subcategory is not found in the system.
	ErrSubcategoryNotFound = errors.New("subcategory not found")

	// ErrSubcategoryCategoryMismatch is returned when a subcategory belongs to another category.
	ErrSubcategoryCategoryMismatch = errors.New("subcategory does not belong to category")

	// ErrCategoryCodeExists is returned when attempting to create a duplicate category code.
	ErrCategoryCodeExists = errors.New("category code already exists")

	// ErrInvalidCategoryCode is returned when a code is not a lowercase snake_case token.
	ErrInvalidCategoryCode = errors.New("invalid category code")

	// ErrInvalidBucket is returned when the bucket is unknown.
	ErrInvalidBucket = errors.New("invalid bucket")
)

// CategoryErrorCode defines error codes for category errors.
// Format: CAT-XXYYYY where XX is category and YYYY is specific error.
type CategoryErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeCategoryNotFound      CategoryErrorCode = "CAT-010001"
	ErrCodeCategoryInactive      CategoryErrorCode = "CAT-010002"
	ErrCodeSubcategoryNotFound   CategoryErrorCode = "CAT-010003"
	ErrCodeSubcategoryMismatch   CategoryErrorCode = "CAT-010004"
	ErrCodeCategoryCodeExists    CategoryErrorCode = "CAT-010005"
	ErrCodeInvalidCategoryCode   CategoryErrorCode = "CAT-010006"
	ErrCodeInvalidBucket         CategoryErrorCode = "CAT-010007"
	ErrCodeMissingCategoryFields CategoryErrorCode = "CAT-010008"
)

// CategoryError represents a category error with code and message.
type CategoryError struct {
	Code    CategoryErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CategoryError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CategoryError) Unwrap() error {
	return e.Err
}

// NewCategoryError creates a new CategoryError with the given code and message.
func NewCategoryError(code CategoryErrorCode, message string, err error) *CategoryError {
	return &CategoryError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
