package rule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/domain/valueobject"
)

const (
	// DefaultOpsPriority is used when an ops rule is created without a priority.
	DefaultOpsPriority = 50
	// MaxPriority bounds rule priorities.
	MaxPriority = 1000
)

// CreateRuleInput represents the input for ops rule creation.
type CreateRuleInput struct {
	AppliesTo       entity.AppliesTo
	Pattern         string
	CategoryCode    string
	SubcategoryCode *string
	Priority        *int
	Scope           entity.Scope
	Caller          Caller
}

// CreateRuleOutput represents the output of rule creation.
type CreateRuleOutput struct {
	Rule *entity.Rule
}

// CreateRuleUseCase handles ops-authored rule creation. Creating a rule whose pattern already
// exists in the scope updates that rule.
type CreateRuleUseCase struct {
	ruleRepo     adapter.RuleRepository
	categoryRepo adapter.CategoryRepository
	cache        *RuleCache
	cfg          valueobject.MatchingConfig
}

// NewCreateRuleUseCase creates a new CreateRuleUseCase instance.
func NewCreateRuleUseCase(
	ruleRepo adapter.RuleRepository,
	categoryRepo adapter.CategoryRepository,
	cache *RuleCache,
	cfg valueobject.MatchingConfig,
) *CreateRuleUseCase {
	return &CreateRuleUseCase{
		ruleRepo:     ruleRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		cfg:          cfg,
	}
}

// Execute performs the rule creation.
func (uc *CreateRuleUseCase) Execute(ctx context.Context, input CreateRuleInput) (*CreateRuleOutput, error) {
	pattern := strings.TrimSpace(input.Pattern)
	if pattern == "" || input.CategoryCode == "" {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeMissingRuleFields,
			"pattern and category_code are required",
			domainerror.ErrRuleMissingFields,
		)
	}

	if input.AppliesTo != entity.AppliesToMerchant && input.AppliesTo != entity.AppliesToDescription {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeInvalidAppliesTo,
			"applies_to must be 'merchant' or 'description'",
			domainerror.ErrInvalidAppliesTo,
		)
	}

	if len(pattern) > uc.cfg.MaxPatternLength {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodePatternTooLong,
			fmt.Sprintf("pattern must not exceed %d characters", uc.cfg.MaxPatternLength),
			domainerror.ErrPatternTooLong,
		)
	}

	if _, err := CompilePattern(pattern); err != nil {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeInvalidPattern,
			"invalid regex pattern: "+err.Error(),
			domainerror.ErrInvalidPattern,
		)
	}

	priority := DefaultOpsPriority
	if input.Priority != nil {
		priority = *input.Priority
	}
	if priority < 0 || priority > MaxPriority {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeInvalidPriority,
			fmt.Sprintf("priority must be between 0 and %d", MaxPriority),
			domainerror.ErrInvalidPriority,
		)
	}

	scope := input.Scope.Normalize()
	if err := input.Caller.authorize(scope); err != nil {
		return nil, err
	}

	category, err := uc.categoryRepo.FindByCode(ctx, input.CategoryCode)
	if err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return nil, domainerror.NewRuleError(
				domainerror.ErrCodeCategoryNotFoundForRule,
				"category not found",
				domainerror.ErrCategoryNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if !category.Active {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeCategoryNotFoundForRule,
			"category is inactive",
			domainerror.ErrCategoryInactive,
		)
	}

	if input.SubcategoryCode != nil && *input.SubcategoryCode != "" {
		sub, err := uc.categoryRepo.FindSubcategoryByCode(ctx, *input.SubcategoryCode)
		if err != nil {
			if errors.Is(err, domainerror.ErrSubcategoryNotFound) {
				return nil, domainerror.NewRuleError(
					domainerror.ErrCodeRuleSubcategoryMismatch,
					"subcategory not found",
					domainerror.ErrSubcategoryNotFound,
				)
			}
			return nil, fmt.Errorf("failed to find subcategory: %w", err)
		}
		if sub.CategoryCode != category.Code {
			return nil, domainerror.NewRuleError(
				domainerror.ErrCodeRuleSubcategoryMismatch,
				"subcategory does not belong to category",
				domainerror.ErrSubcategoryCategoryMismatch,
			)
		}
	} else {
		input.SubcategoryCode = nil
	}

	createdBy := input.Caller.UserID
	rule := entity.NewRule(
		input.AppliesTo,
		pattern,
		category.Code,
		input.SubcategoryCode,
		priority,
		scope,
		entity.ProvenanceOps,
		&createdBy,
	)

	stored, err := uc.ruleRepo.Upsert(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	if err := uc.cache.Invalidate(ctx, scope); err != nil {
		slog.Warn("Rule cache invalidation broadcast failed", "scope", scope, "error", err)
	}

	return &CreateRuleOutput{Rule: stored}, nil
}
