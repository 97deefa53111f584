package rule

import (
	"context"
	"fmt"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// ListRulesInput represents the input for listing rules.
type ListRulesInput struct {
	Scope entity.Scope
	// ActiveOnly lists what the matcher would use for Scope, global rules included.
	ActiveOnly bool
}

// ListRulesOutput represents the output of listing rules.
type ListRulesOutput struct {
	Rules []*entity.Rule
}

// ListRulesUseCase handles listing rules.
type ListRulesUseCase struct {
	ruleRepo adapter.RuleRepository
}

// NewListRulesUseCase creates a new ListRulesUseCase instance.
func NewListRulesUseCase(ruleRepo adapter.RuleRepository) *ListRulesUseCase {
	return &ListRulesUseCase{
		ruleRepo: ruleRepo,
	}
}

// Execute performs the listing.
func (uc *ListRulesUseCase) Execute(ctx context.Context, input ListRulesInput) (*ListRulesOutput, error) {
	scope := input.Scope.Normalize()

	var (
		rules []*entity.Rule
		err   error
	)
	if input.ActiveOnly {
		rules, err = uc.ruleRepo.FindActiveForScope(ctx, scope)
	} else {
		rules, err = uc.ruleRepo.FindByScope(ctx, scope)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	return &ListRulesOutput{Rules: rules}, nil
}
