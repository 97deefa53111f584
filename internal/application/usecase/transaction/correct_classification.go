// Package transaction contains use cases acting on loaded transactions.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

// CorrectionLearner learns a rule from a manual correction.
type CorrectionLearner interface {
	Execute(ctx context.Context, input rule.RecordCorrectionInput) (*rule.RecordCorrectionOutput, error)
}

// CorrectClassificationInput represents a person's classification of one of their transactions.
type CorrectClassificationInput struct {
	FactID          uuid.UUID
	UserID          uuid.UUID
	Scope           entity.Scope
	CategoryCode    string
	SubcategoryCode *string
	SkipLearning    bool
}

// CorrectClassificationOutput represents the output of a manual correction.
type CorrectClassificationOutput struct {
	Enrichment    *entity.Enrichment
	LearnedRuleID *uuid.UUID
	LearnOutcome  string
}

// CorrectClassificationUseCase overrides a fact's enrichment and learns a rule from it.
type CorrectClassificationUseCase struct {
	factRepo     adapter.FactRepository
	categoryRepo adapter.CategoryRepository
	learner      CorrectionLearner
}

// NewCorrectClassificationUseCase creates a new CorrectClassificationUseCase instance.
func NewCorrectClassificationUseCase(
	factRepo adapter.FactRepository,
	categoryRepo adapter.CategoryRepository,
	learner CorrectionLearner,
) *CorrectClassificationUseCase {
	return &CorrectClassificationUseCase{
		factRepo:     factRepo,
		categoryRepo: categoryRepo,
		learner:      learner,
	}
}

// Execute writes a manual enrichment. Learning is best effort and never fails the correction.
func (uc *CorrectClassificationUseCase) Execute(ctx context.Context, input CorrectClassificationInput) (*CorrectClassificationOutput, error) {
	if input.CategoryCode == "" {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeMissingCategoryFields,
			"category_code is required",
			domainerror.ErrCategoryNotFound,
		)
	}

	current, err := uc.factRepo.FindByID(ctx, input.UserID, input.FactID)
	if err != nil {
		if errors.Is(err, domainerror.ErrFactNotFound) {
			return nil, domainerror.NewLoaderError(domainerror.ErrCodeFactNotFound, "transaction not found", err)
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	category, err := uc.categoryRepo.FindByCode(ctx, input.CategoryCode)
	if err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return nil, domainerror.NewCategoryError(domainerror.ErrCodeCategoryNotFound, "category not found", err)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if !category.Active {
		return nil, domainerror.NewCategoryError(domainerror.ErrCodeCategoryInactive, "category is inactive", domainerror.ErrCategoryInactive)
	}

	var subcategory *entity.Subcategory
	if input.SubcategoryCode != nil && *input.SubcategoryCode != "" {
		subcategory, err = uc.categoryRepo.FindSubcategoryByCode(ctx, *input.SubcategoryCode)
		if err != nil {
			if errors.Is(err, domainerror.ErrSubcategoryNotFound) {
				return nil, domainerror.NewCategoryError(domainerror.ErrCodeSubcategoryNotFound, "subcategory not found", err)
			}
			return nil, fmt.Errorf("failed to find subcategory: %w", err)
		}
		if subcategory.CategoryCode != category.Code {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeSubcategoryMismatch,
				"subcategory does not belong to category",
				domainerror.ErrSubcategoryCategoryMismatch,
			)
		}
	}

	enrichment := &entity.Enrichment{
		FactID:       current.Fact.ID,
		CategoryCode: category.Code,
		Bucket:       category.Bucket,
		Confidence:   entity.ManualConfidence,
		Source:       entity.EnrichmentSourceManual,
		ComputedAt:   time.Now().UTC(),
	}
	if subcategory != nil {
		code := subcategory.Code
		enrichment.SubcategoryCode = &code
	}

	if _, err := uc.factRepo.ReplaceEnrichments(ctx, []*entity.LoadedFact{{
		Fact:        current.Fact,
		Enrichment:  enrichment,
		Category:    category,
		Subcategory: subcategory,
	}}); err != nil {
		return nil, fmt.Errorf("failed to store correction: %w", err)
	}

	output := &CorrectClassificationOutput{Enrichment: enrichment}
	if input.SkipLearning || uc.learner == nil {
		return output, nil
	}

	scope := input.Scope
	if scope == "" {
		scope = entity.Scope(input.UserID.String())
	}
	learned, err := uc.learner.Execute(ctx, rule.RecordCorrectionInput{
		Merchant:        current.Fact.NormalizedMerchant,
		Description:     current.Fact.Description,
		CategoryCode:    category.Code,
		SubcategoryCode: enrichment.SubcategoryCode,
		Actor:           input.UserID,
		Scope:           scope,
	})
	if err != nil {
		slog.Warn("Failed to learn from correction",
			"fact_id", current.Fact.ID,
			"user_id", input.UserID,
			"error", err,
		)
		output.LearnOutcome = adapter.LearnOutcomeError
		return output, nil
	}
	output.LearnedRuleID = learned.RuleID
	output.LearnOutcome = learned.Outcome
	return output, nil
}
