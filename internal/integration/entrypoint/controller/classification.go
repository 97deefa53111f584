// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/application/usecase/transaction"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/middleware"
)

// ClassificationController handles classify and correction endpoints.
type ClassificationController struct {
	classifyUseCase *rule.ClassifyUseCase
	learnUseCase    *rule.RecordCorrectionUseCase
	correctUseCase  *transaction.CorrectClassificationUseCase
}

// NewClassificationController creates a new classification controller instance.
func NewClassificationController(
	classifyUseCase *rule.ClassifyUseCase,
	learnUseCase *rule.RecordCorrectionUseCase,
	correctUseCase *transaction.CorrectClassificationUseCase,
) *ClassificationController {
	return &ClassificationController{
		classifyUseCase: classifyUseCase,
		learnUseCase:    learnUseCase,
		correctUseCase:  correctUseCase,
	}
}

// Classify handles POST /classify requests.
func (c *ClassificationController) Classify(ctx *gin.Context) {
	scope, ok := middleware.GetScopeFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.ClassifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	output, err := c.classifyUseCase.Execute(ctx.Request.Context(), rule.ClassifyInput{
		MerchantRaw: req.Merchant,
		Description: req.Description,
		Direction:   entity.Direction(req.Direction),
		Scope:       scope,
	})
	if err != nil {
		handleError(ctx, err, "Failed to classify transaction")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToClassifyResponse(output))
}

// RecordCorrection handles POST /corrections requests.
// It learns from text alone; a declined correction is still a 200 with the outcome.
func (c *ClassificationController) RecordCorrection(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}
	scope, _ := middleware.GetScopeFromContext(ctx)

	var req dto.RecordCorrectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	output, err := c.learnUseCase.Execute(ctx.Request.Context(), rule.RecordCorrectionInput{
		Merchant:        req.Merchant,
		Description:     req.Description,
		CategoryCode:    req.CategoryCode,
		SubcategoryCode: req.SubcategoryCode,
		Actor:           userID,
		Scope:           scope,
	})
	if err != nil {
		handleError(ctx, err, "Failed to record correction")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecordCorrectionResponse(output))
}

// CorrectTransaction handles PATCH /transactions/:id/classification requests.
func (c *ClassificationController) CorrectTransaction(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}
	scope, _ := middleware.GetScopeFromContext(ctx)

	factID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid transaction ID format",
			Code:  string(domainerror.ErrCodeMissingFactFields),
		})
		return
	}

	var req dto.CorrectClassificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingCategoryFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.correctUseCase.Execute(ctx.Request.Context(), transaction.CorrectClassificationInput{
		FactID:          factID,
		UserID:          userID,
		Scope:           scope,
		CategoryCode:    req.CategoryCode,
		SubcategoryCode: req.SubcategoryCode,
		SkipLearning:    req.SkipLearning,
	})
	if err != nil {
		handleError(ctx, err, "Failed to correct transaction classification")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCorrectClassificationResponse(output))
}
