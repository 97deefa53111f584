package rule

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

const (
	// DefaultMatchLimit is the default number of matching facts to return.
	DefaultMatchLimit = 10
	// MaxMatchLimit is the maximum number of matching facts to return.
	MaxMatchLimit = 100
	// patternTestWindow is how many recent facts a pattern is tested against.
	patternTestWindow = 500
)

// TestPatternInput represents the input for pattern testing.
type TestPatternInput struct {
	Pattern   string
	AppliesTo entity.AppliesTo
	Limit     int // Optional, defaults to DefaultMatchLimit
	UserID    uuid.UUID
}

// TestPatternOutput represents the output of pattern testing.
type TestPatternOutput struct {
	Result *entity.RulePatternTest
}

// TestPatternUseCase dry-runs a pattern against a user's recent facts.
type TestPatternUseCase struct {
	factRepo adapter.FactRepository
}

// NewTestPatternUseCase creates a new TestPatternUseCase instance.
func NewTestPatternUseCase(factRepo adapter.FactRepository) *TestPatternUseCase {
	return &TestPatternUseCase{
		factRepo: factRepo,
	}
}

// Execute performs the pattern testing.
func (uc *TestPatternUseCase) Execute(ctx context.Context, input TestPatternInput) (*TestPatternOutput, error) {
	if strings.TrimSpace(input.Pattern) == "" {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeMissingRuleFields,
			"pattern is required",
			domainerror.ErrRuleMissingFields,
		)
	}

	re, err := CompilePattern(input.Pattern)
	if err != nil {
		return nil, domainerror.NewRuleError(
			domainerror.ErrCodeInvalidPattern,
			"invalid regex pattern: "+err.Error(),
			domainerror.ErrInvalidPattern,
		)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	} else if limit > MaxMatchLimit {
		limit = MaxMatchLimit
	}

	facts, err := uc.factRepo.FindRecentByUser(ctx, input.UserID, patternTestWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent facts: %w", err)
	}

	result := &entity.RulePatternTest{}
	for _, f := range facts {
		text := f.NormalizedMerchant
		if input.AppliesTo == entity.AppliesToDescription {
			text = f.Description
		}
		if text == "" || !re.MatchString(text) {
			continue
		}
		result.MatchCount++
		if len(result.Matches) < limit {
			result.Matches = append(result.Matches, f)
		}
	}

	return &TestPatternOutput{Result: result}, nil
}
