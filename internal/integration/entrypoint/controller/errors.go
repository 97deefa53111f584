// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/dto"
)

// handleError maps coded domain errors to HTTP responses. Anything else is a 500.
func handleError(ctx *gin.Context, err error, message string) {
	var ruleErr *domainerror.RuleError
	if errors.As(err, &ruleErr) {
		ctx.JSON(statusForRuleError(ruleErr.Code), dto.ErrorResponse{
			Error: ruleErr.Message,
			Code:  string(ruleErr.Code),
		})
		return
	}

	var categoryErr *domainerror.CategoryError
	if errors.As(err, &categoryErr) {
		ctx.JSON(statusForCategoryError(categoryErr.Code), dto.ErrorResponse{
			Error: categoryErr.Message,
			Code:  string(categoryErr.Code),
		})
		return
	}

	var loaderErr *domainerror.LoaderError
	if errors.As(err, &loaderErr) {
		ctx.JSON(statusForLoaderError(loaderErr.Code), dto.ErrorResponse{
			Error: loaderErr.Message,
			Code:  string(loaderErr.Code),
		})
		return
	}

	slog.Error(message, "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: message,
	})
}

// statusForRuleError maps rule error codes to HTTP status codes.
func statusForRuleError(code domainerror.RuleErrorCode) int {
	switch code {
	case domainerror.ErrCodeRuleNotFound,
		domainerror.ErrCodeCategoryNotFoundForRule:
		return http.StatusNotFound
	case domainerror.ErrCodeNotAuthorizedForScope:
		return http.StatusForbidden
	case domainerror.ErrCodeRulesUnavailable:
		return http.StatusServiceUnavailable
	case domainerror.ErrCodeInvalidPattern,
		domainerror.ErrCodePatternTooLong,
		domainerror.ErrCodeMissingRuleFields,
		domainerror.ErrCodeInvalidAppliesTo,
		domainerror.ErrCodeInvalidPriority,
		domainerror.ErrCodeRuleSubcategoryMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// statusForCategoryError maps category error codes to HTTP status codes.
func statusForCategoryError(code domainerror.CategoryErrorCode) int {
	switch code {
	case domainerror.ErrCodeCategoryNotFound,
		domainerror.ErrCodeSubcategoryNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeCategoryCodeExists:
		return http.StatusConflict
	case domainerror.ErrCodeCategoryInactive,
		domainerror.ErrCodeSubcategoryMismatch,
		domainerror.ErrCodeInvalidCategoryCode,
		domainerror.ErrCodeInvalidBucket,
		domainerror.ErrCodeMissingCategoryFields:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// statusForLoaderError maps loader error codes to HTTP status codes.
func statusForLoaderError(code domainerror.LoaderErrorCode) int {
	switch code {
	case domainerror.ErrCodeFactNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeInvalidStagingRow,
		domainerror.ErrCodeEmptyStagingBatch,
		domainerror.ErrCodeMissingFactFields:
		return http.StatusBadRequest
	case domainerror.ErrCodeStoreUnavailable,
		domainerror.ErrCodeLoadFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// unauthenticated writes the response for handlers reached without identity.
func unauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "User not authenticated",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}
