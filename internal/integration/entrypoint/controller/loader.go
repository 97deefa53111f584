// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/usecase/loader"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/middleware"
)

// LoaderController handles staging intake, load runs and re-enrichment.
type LoaderController struct {
	stageUseCase    *loader.StageRowsUseCase
	loadUseCase     *loader.LoadStagingUseCase
	statusUseCase   *loader.LoadStatusUseCase
	reenrichUseCase *loader.ReenrichUseCase
}

// NewLoaderController creates a new loader controller instance.
func NewLoaderController(
	stageUseCase *loader.StageRowsUseCase,
	loadUseCase *loader.LoadStagingUseCase,
	statusUseCase *loader.LoadStatusUseCase,
	reenrichUseCase *loader.ReenrichUseCase,
) *LoaderController {
	return &LoaderController{
		stageUseCase:    stageUseCase,
		loadUseCase:     loadUseCase,
		statusUseCase:   statusUseCase,
		reenrichUseCase: reenrichUseCase,
	}
}

// StageBatch handles POST /staging/batches requests.
func (c *LoaderController) StageBatch(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}
	scope, _ := middleware.GetScopeFromContext(ctx)

	var req dto.StageRowsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	output, err := c.stageUseCase.Execute(ctx.Request.Context(), loader.StageRowsInput{
		UserID: userID,
		Rows:   dto.ToStageRowsInput(req.Rows),
	})
	if err != nil {
		handleError(ctx, err, "Failed to stage transactions")
		return
	}

	response := dto.ToStageRowsResponse(output)
	if req.Load {
		loaded, err := c.loadUseCase.Execute(ctx.Request.Context(), loader.LoadStagingInput{
			UserID: userID,
			Scope:  scope,
		})
		if loaded != nil {
			counts := dto.ToLoadResponse(loaded)
			response.Load = &counts
		}
		if err != nil {
			// The batch is stored; a later load run picks it up.
			slog.Warn("Load after staging failed", "user_id", userID, "batch_id", output.BatchID, "error", err)
		}
	}

	ctx.JSON(http.StatusCreated, response)
}

// Load handles POST /loads requests.
func (c *LoaderController) Load(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}
	scope, _ := middleware.GetScopeFromContext(ctx)

	output, err := c.loadUseCase.Execute(ctx.Request.Context(), loader.LoadStagingInput{
		UserID: userID,
		Scope:  scope,
	})
	if err != nil {
		if output != nil {
			slog.Warn("Load stopped early",
				"user_id", userID,
				"inserted", output.Inserted,
				"duplicate", output.Duplicate,
				"failed", output.Failed,
			)
		}
		handleError(ctx, err, "Failed to load staged transactions")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLoadResponse(output))
}

// Status handles GET /loads/status requests.
func (c *LoaderController) Status(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	status, err := c.statusUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err, "Failed to retrieve load status")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLoadStatusResponse(status))
}

// Reenrich handles POST /ops/reenrich requests.
func (c *LoaderController) Reenrich(ctx *gin.Context) {
	var req dto.ReenrichRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Invalid request body",
				Details: err.Error(),
			})
			return
		}
	}

	input := loader.ReenrichInput{BatchSize: req.BatchSize}
	if req.UserID != nil {
		id, err := uuid.Parse(*req.UserID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid user ID format",
			})
			return
		}
		input.UserID = &id
	}

	output, err := c.reenrichUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err, "Failed to re-enrich transactions")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReenrichResponse(output))
}
