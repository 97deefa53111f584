// Package error defines domain-specific errors for the categorization engine.
package error

import "errors"

// Rule domain errors.
var (
	// ErrRuleNotFound is returned when a rule is not found in the system.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrInvalidPattern is returned when the regex pattern does not compile.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrPatternTooLong is returned when the pattern exceeds the maximum length.
	ErrPatternTooLong = errors.New("pattern too long")

	// ErrRuleMissingFields is returned when required fields are missing.
	ErrRuleMissingFields = errors.New("missing required fields")

	// ErrInvalidAppliesTo is returned when applies_to is neither merchant nor description.
	ErrInvalidAppliesTo = errors.New("invalid applies_to value")

	// ErrInvalidPriority is returned when the priority value is out of range.
	ErrInvalidPriority = errors.New("invalid priority value")

	// ErrNotAuthorizedForScope is returned when the caller may not write rules in a scope.
	ErrNotAuthorizedForScope = errors.New("not authorized to modify rules in scope")

	// ErrRulesUnavailable is returned when the rule store failed and no cached rules exist.
	ErrRulesUnavailable = errors.New("rules unavailable")
)

// RuleErrorCode defines error codes for rule errors.
// Format: RUL-XXYYYY where XX is category and YYYY is specific error.
type RuleErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeRuleNotFound            RuleErrorCode = "RUL-010001"
	ErrCodeInvalidPattern          RuleErrorCode = "RUL-010002"
	ErrCodePatternTooLong          RuleErrorCode = "RUL-010003"
	ErrCodeMissingRuleFields       RuleErrorCode = "RUL-010004"
	ErrCodeInvalidAppliesTo        RuleErrorCode = "RUL-010005"
	ErrCodeInvalidPriority         RuleErrorCode = "RUL-010006"
	ErrCodeCategoryNotFoundForRule RuleErrorCode = "RUL-010007"
	ErrCodeRuleSubcategoryMismatch RuleErrorCode = "RUL-010008"

	// Authorization errors (02XXXX)
	ErrCodeNotAuthorizedForScope RuleErrorCode = "RUL-020001"

	// Availability errors (03XXXX)
	ErrCodeRulesUnavailable RuleErrorCode = "RUL-030001"
)

// RuleError represents a rule error with code and message.
type RuleError struct {
	Code    RuleErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// NewRuleError creates a new RuleError with the given code and message.
func NewRuleError(code RuleErrorCode, message string, err error) *RuleError {
	return &RuleError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
