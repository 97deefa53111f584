package rule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

// DeactivateRuleInput represents the input for rule deactivation.
type DeactivateRuleInput struct {
	RuleID uuid.UUID
	Caller Caller
}

// DeactivateRuleUseCase soft-disables a rule. Rules are never hard-deleted so past
// enrichments keep a valid matched_rule_id.
type DeactivateRuleUseCase struct {
	ruleRepo adapter.RuleRepository
	cache    *RuleCache
}

// NewDeactivateRuleUseCase creates a new DeactivateRuleUseCase instance.
func NewDeactivateRuleUseCase(ruleRepo adapter.RuleRepository, cache *RuleCache) *DeactivateRuleUseCase {
	return &DeactivateRuleUseCase{
		ruleRepo: ruleRepo,
		cache:    cache,
	}
}

// Execute performs the deactivation.
func (uc *DeactivateRuleUseCase) Execute(ctx context.Context, input DeactivateRuleInput) error {
	rule, err := uc.ruleRepo.FindByID(ctx, input.RuleID)
	if err != nil {
		if errors.Is(err, domainerror.ErrRuleNotFound) {
			return domainerror.NewRuleError(
				domainerror.ErrCodeRuleNotFound,
				"rule not found",
				domainerror.ErrRuleNotFound,
			)
		}
		return fmt.Errorf("failed to find rule: %w", err)
	}

	if err := input.Caller.authorize(rule.Scope); err != nil {
		return err
	}

	if !rule.Active {
		return nil
	}

	if err := uc.ruleRepo.Deactivate(ctx, rule.ID); err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}

	if err := uc.cache.Invalidate(ctx, rule.Scope); err != nil {
		slog.Warn("Rule cache invalidation broadcast failed", "scope", rule.Scope, "error", err)
	}
	return nil
}
