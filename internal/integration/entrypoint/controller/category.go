// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/categorizer/internal/application/usecase/category"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/dto"
)

// CategoryController handles category endpoints.
type CategoryController struct {
	listUseCase              *category.ListCategoriesUseCase
	createUseCase            *category.CreateCategoryUseCase
	createSubcategoryUseCase *category.CreateSubcategoryUseCase
	updateUseCase            *category.UpdateCategoryUseCase
}

// NewCategoryController creates a new category controller instance.
func NewCategoryController(
	listUseCase *category.ListCategoriesUseCase,
	createUseCase *category.CreateCategoryUseCase,
	createSubcategoryUseCase *category.CreateSubcategoryUseCase,
	updateUseCase *category.UpdateCategoryUseCase,
) *CategoryController {
	return &CategoryController{
		listUseCase:              listUseCase,
		createUseCase:            createUseCase,
		createSubcategoryUseCase: createSubcategoryUseCase,
		updateUseCase:            updateUseCase,
	}
}

// List handles GET /categories requests.
func (c *CategoryController) List(ctx *gin.Context) {
	output, err := c.listUseCase.Execute(ctx.Request.Context(), category.ListCategoriesInput{
		IncludeInactive: ctx.Query("include_inactive") == "true",
	})
	if err != nil {
		handleError(ctx, err, "Failed to retrieve categories")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryListResponse(output.Categories))
}

// Create handles POST /categories requests.
func (c *CategoryController) Create(ctx *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingCategoryFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), category.CreateCategoryInput{
		Code:         req.Code,
		Name:         req.Name,
		Bucket:       entity.Bucket(req.Bucket),
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleError(ctx, err, "Failed to create category")
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCategoryResponse(output.Category))
}

// CreateSubcategory handles POST /categories/:code/subcategories requests.
func (c *CategoryController) CreateSubcategory(ctx *gin.Context) {
	var req dto.CreateSubcategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingCategoryFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.createSubcategoryUseCase.Execute(ctx.Request.Context(), category.CreateSubcategoryInput{
		Code:         req.Code,
		CategoryCode: ctx.Param("code"),
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		handleError(ctx, err, "Failed to create subcategory")
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSubcategoryResponse(output.Subcategory))
}

// Update handles PATCH /categories/:code requests.
func (c *CategoryController) Update(ctx *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingCategoryFields),
			Details: err.Error(),
		})
		return
	}

	input := category.UpdateCategoryInput{
		Code:         ctx.Param("code"),
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active,
	}
	if req.Bucket != nil {
		bucket := entity.Bucket(*req.Bucket)
		input.Bucket = &bucket
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err, "Failed to update category")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryResponse(output.Category))
}
