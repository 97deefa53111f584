package rule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

// LearningConfig contains the learning quota and learned rule priorities.
type LearningConfig struct {
	DailyLimit          int
	MerchantPriority    int
	DescriptionPriority int
}

// DefaultLearningConfig returns the default learning configuration.
func DefaultLearningConfig() LearningConfig {
	return LearningConfig{
		DailyLimit:          50,
		MerchantPriority:    10,
		DescriptionPriority: 12,
	}
}

// RecordCorrectionInput represents a person's manual classification of transaction text.
type RecordCorrectionInput struct {
	Merchant        string
	Description     string
	CategoryCode    string
	SubcategoryCode *string
	Actor           uuid.UUID
	Scope           entity.Scope
}

// RecordCorrectionOutput represents the output of learning from a correction.
// RuleID is nil when no rule was written; Outcome tells why.
type RecordCorrectionOutput struct {
	RuleID  *uuid.UUID
	Outcome string
}

// RecordCorrectionUseCase turns a manual correction into a learned rule.
type RecordCorrectionUseCase struct {
	ruleRepo     adapter.RuleRepository
	categoryRepo adapter.CategoryRepository
	cache        *RuleCache
	metrics      adapter.CategorizationMetrics
	cfg          LearningConfig
	now          func() time.Time
}

// NewRecordCorrectionUseCase creates a new RecordCorrectionUseCase instance.
func NewRecordCorrectionUseCase(
	ruleRepo adapter.RuleRepository,
	categoryRepo adapter.CategoryRepository,
	cache *RuleCache,
	metrics adapter.CategorizationMetrics,
	cfg LearningConfig,
) *RecordCorrectionUseCase {
	if metrics == nil {
		metrics = adapter.NopMetrics{}
	}
	return &RecordCorrectionUseCase{
		ruleRepo:     ruleRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		metrics:      metrics,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Execute learns a rule from the correction.
// Policy declines (unknown category, weak pattern, exhausted quota) return a nil RuleID and
// no error. Errors are store failures only; callers treat learning as best effort.
func (uc *RecordCorrectionUseCase) Execute(ctx context.Context, input RecordCorrectionInput) (*RecordCorrectionOutput, error) {
	ctx, span := tracer.Start(ctx, "rule.RecordCorrection")
	defer span.End()

	scope := input.Scope.Normalize()
	logger := slog.With("actor", input.Actor, "scope", scope, "category", input.CategoryCode)

	category, err := uc.categoryRepo.FindByCode(ctx, input.CategoryCode)
	if err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return uc.decline(logger, adapter.LearnOutcomeInvalid, "category not found")
		}
		uc.metrics.LearnOutcome(adapter.LearnOutcomeError)
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if !category.Active {
		return uc.decline(logger, adapter.LearnOutcomeInvalid, "category inactive")
	}

	subcategory, err := uc.resolveSubcategory(ctx, category.Code, input.SubcategoryCode)
	if err != nil {
		uc.metrics.LearnOutcome(adapter.LearnOutcomeError)
		return nil, err
	}

	synthesized, ok := Synthesize(input.Merchant, input.Description)
	if !ok {
		return uc.decline(logger, adapter.LearnOutcomeWeak, "no usable pattern")
	}

	if uc.cfg.DailyLimit > 0 {
		now := uc.now().UTC()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		count, err := uc.ruleRepo.CountLearnedSince(ctx, input.Actor, scope, dayStart)
		switch {
		case err != nil:
			logger.Warn("Failed to count learned rules, continuing", "error", err)
		case count >= int64(uc.cfg.DailyLimit):
			return uc.decline(logger, adapter.LearnOutcomeRateLimited, "daily learning quota reached")
		}
	}

	priority := uc.cfg.MerchantPriority
	if synthesized.AppliesTo == entity.AppliesToDescription {
		priority = uc.cfg.DescriptionPriority
	}
	actor := input.Actor
	rule := entity.NewRule(
		synthesized.AppliesTo,
		synthesized.Pattern,
		category.Code,
		subcategory,
		priority,
		scope,
		entity.ProvenanceLearned,
		&actor,
	)

	stored, err := uc.ruleRepo.Upsert(ctx, rule)
	if err != nil {
		uc.metrics.LearnOutcome(adapter.LearnOutcomeError)
		span.RecordError(err)
		return nil, fmt.Errorf("failed to upsert learned rule: %w", err)
	}

	if err := uc.cache.Invalidate(ctx, scope); err != nil {
		logger.Warn("Rule cache invalidation broadcast failed", "error", err)
	}

	uc.metrics.LearnOutcome(adapter.LearnOutcomeCreated)
	span.SetAttributes(attribute.String("rule.id", stored.ID.String()))
	logger.Info("Learned rule from correction",
		"rule_id", stored.ID,
		"applies_to", stored.AppliesTo,
		"pattern", stored.Pattern,
	)

	ruleID := stored.ID
	return &RecordCorrectionOutput{RuleID: &ruleID, Outcome: adapter.LearnOutcomeCreated}, nil
}

// resolveSubcategory drops a subcategory that is unknown or belongs to another category.
func (uc *RecordCorrectionUseCase) resolveSubcategory(ctx context.Context, categoryCode string, code *string) (*string, error) {
	if code == nil || *code == "" {
		return nil, nil
	}
	sub, err := uc.categoryRepo.FindSubcategoryByCode(ctx, *code)
	if err != nil {
		if errors.Is(err, domainerror.ErrSubcategoryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subcategory: %w", err)
	}
	if sub.CategoryCode != categoryCode {
		return nil, nil
	}
	resolved := sub.Code
	return &resolved, nil
}

func (uc *RecordCorrectionUseCase) decline(logger *slog.Logger, outcome, reason string) (*RecordCorrectionOutput, error) {
	uc.metrics.LearnOutcome(outcome)
	logger.Info("Correction not learned", "outcome", outcome, "reason", reason)
	return &RecordCorrectionOutput{Outcome: outcome}, nil
}
