// Package error defines domain-specific errors for the categorization engine.
package error

import "errors"

// Loader and fact domain errors.
var (
	// ErrFactNotFound is returned when a fact does not exist for the user.
	ErrFactNotFound = errors.New("fact not found")

	// ErrDuplicateFact is returned when a fact with the same content fingerprint already exists.
	// Loaders treat it as an idempotent skip.
	ErrDuplicateFact = errors.New("duplicate fact")

	// ErrStoreUnavailable is returned when the fact store cannot be reached during a load.
	ErrStoreUnavailable = errors.New("fact store unavailable")

	// ErrInvalidStagingRow is returned when an intake row cannot be parsed.
	ErrInvalidStagingRow = errors.New("invalid staging row")

	// ErrEmptyStagingBatch is returned when an intake batch has no rows.
	ErrEmptyStagingBatch = errors.New("staging batch is empty")
)

// LoaderErrorCode defines error codes for loader errors.
// Format: LDR-XXYYYY where XX is category and YYYY is specific error.
type LoaderErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeFactNotFound      LoaderErrorCode = "LDR-010001"
	ErrCodeInvalidStagingRow LoaderErrorCode = "LDR-010002"
	ErrCodeEmptyStagingBatch LoaderErrorCode = "LDR-010003"
	ErrCodeMissingFactFields LoaderErrorCode = "LDR-010004"

	// Batch errors (02XXXX)
	ErrCodeStoreUnavailable LoaderErrorCode = "LDR-020001"
	ErrCodeLoadFailed       LoaderErrorCode = "LDR-020002"
)

// LoaderError represents a loader error with code and message.
type LoaderError struct {
	Code    LoaderErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LoaderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *LoaderError) Unwrap() error {
	return e.Err
}

// NewLoaderError creates a new LoaderError with the given code and message.
func NewLoaderError(code LoaderErrorCode, message string, err error) *LoaderError {
	return &LoaderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
