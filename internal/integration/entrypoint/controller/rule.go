// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/middleware"
)

// RuleController handles rule management endpoints.
type RuleController struct {
	listUseCase       *rule.ListRulesUseCase
	createUseCase     *rule.CreateRuleUseCase
	deactivateUseCase *rule.DeactivateRuleUseCase
	testUseCase       *rule.TestPatternUseCase
}

// NewRuleController creates a new rule controller instance.
func NewRuleController(
	listUseCase *rule.ListRulesUseCase,
	createUseCase *rule.CreateRuleUseCase,
	deactivateUseCase *rule.DeactivateRuleUseCase,
	testUseCase *rule.TestPatternUseCase,
) *RuleController {
	return &RuleController{
		listUseCase:       listUseCase,
		createUseCase:     createUseCase,
		deactivateUseCase: deactivateUseCase,
		testUseCase:       testUseCase,
	}
}

// callerFrom builds the rule management caller from the authenticated identity.
func callerFrom(ctx *gin.Context) (rule.Caller, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return rule.Caller{}, false
	}
	scope, _ := middleware.GetScopeFromContext(ctx)
	return rule.Caller{
		UserID: userID,
		Scope:  scope,
		IsOps:  middleware.IsOps(ctx),
	}, true
}

// List handles GET /rules requests.
// Non-ops callers may list their own scope or the global scope only.
func (c *RuleController) List(ctx *gin.Context) {
	caller, ok := callerFrom(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	scope := caller.Scope
	if requested := strings.TrimSpace(ctx.Query("scope")); requested != "" {
		scope = entity.Scope(requested).Normalize()
	}
	if !caller.IsOps && !scope.IsGlobal() && scope != caller.Scope {
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error: "Not authorized to list rules in scope " + string(scope),
			Code:  string(domainerror.ErrCodeNotAuthorizedForScope),
		})
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), rule.ListRulesInput{
		Scope:      scope,
		ActiveOnly: ctx.Query("active_only") == "true",
	})
	if err != nil {
		handleError(ctx, err, "Failed to retrieve rules")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRuleListResponse(output.Rules))
}

// Create handles POST /rules requests.
func (c *RuleController) Create(ctx *gin.Context) {
	caller, ok := callerFrom(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.CreateRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingRuleFields),
			Details: err.Error(),
		})
		return
	}

	scope := caller.Scope
	if req.Scope != "" {
		scope = entity.Scope(req.Scope)
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), rule.CreateRuleInput{
		AppliesTo:       entity.AppliesTo(req.AppliesTo),
		Pattern:         req.Pattern,
		CategoryCode:    req.CategoryCode,
		SubcategoryCode: req.SubcategoryCode,
		Priority:        req.Priority,
		Scope:           scope,
		Caller:          caller,
	})
	if err != nil {
		handleError(ctx, err, "Failed to create rule")
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRuleResponse(output.Rule))
}

// Deactivate handles DELETE /rules/:id requests. Rules are soft-disabled.
func (c *RuleController) Deactivate(ctx *gin.Context) {
	caller, ok := callerFrom(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	ruleID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid rule ID format",
		})
		return
	}

	if err := c.deactivateUseCase.Execute(ctx.Request.Context(), rule.DeactivateRuleInput{
		RuleID: ruleID,
		Caller: caller,
	}); err != nil {
		handleError(ctx, err, "Failed to deactivate rule")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// TestPattern handles POST /rules/test requests.
func (c *RuleController) TestPattern(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.TestPatternRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingRuleFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.testUseCase.Execute(ctx.Request.Context(), rule.TestPatternInput{
		Pattern:   req.Pattern,
		AppliesTo: entity.AppliesTo(req.AppliesTo),
		Limit:     req.Limit,
		UserID:    userID,
	})
	if err != nil {
		handleError(ctx, err, "Failed to test pattern")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTestPatternResponse(output.Result))
}
