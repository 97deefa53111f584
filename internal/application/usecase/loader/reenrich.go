package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// DefaultReenrichBatchSize is the number of facts read and committed per page.
const DefaultReenrichBatchSize = 500

// ReenrichInput represents the input for a re-enrichment pass.
type ReenrichInput struct {
	UserID    *uuid.UUID   // nil re-enriches every user
	Scope     entity.Scope // Optional, defaults to each fact's user scope
	BatchSize int
}

// ReenrichOutput represents the outcome of a re-enrichment pass.
type ReenrichOutput struct {
	Scanned int
	Updated int
	Manual  int
	Failed  int
}

// ReenrichUseCase reclassifies existing facts against the current rules.
// Manual enrichments are left untouched.
type ReenrichUseCase struct {
	factRepo   adapter.FactRepository
	classifier Classifier
}

// NewReenrichUseCase creates a new ReenrichUseCase instance.
func NewReenrichUseCase(factRepo adapter.FactRepository, classifier Classifier) *ReenrichUseCase {
	return &ReenrichUseCase{
		factRepo:   factRepo,
		classifier: classifier,
	}
}

// Execute pages through facts by ID and commits each page's changed enrichments together.
func (uc *ReenrichUseCase) Execute(ctx context.Context, input ReenrichInput) (*ReenrichOutput, error) {
	ctx, span := tracer.Start(ctx, "loader.Reenrich")
	defer span.End()

	batchSize := input.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultReenrichBatchSize
	}

	output := &ReenrichOutput{}
	filter := adapter.FactFilter{UserID: input.UserID, Limit: batchSize}
	for {
		if err := ctx.Err(); err != nil {
			return output, err
		}

		page, err := uc.factRepo.List(ctx, filter)
		if err != nil {
			return output, fmt.Errorf("failed to list facts: %w", err)
		}
		if len(page) == 0 {
			break
		}

		var replacements []*entity.LoadedFact
		for _, item := range page {
			output.Scanned++
			if item.Enrichment != nil && item.Enrichment.IsManual() {
				output.Manual++
				continue
			}

			scope := input.Scope
			if scope == "" {
				scope = entity.Scope(item.Fact.UserID.String())
			}
			classified, err := uc.classifier.Execute(ctx, rule.ClassifyInput{
				MerchantRaw: item.Fact.NormalizedMerchant,
				Description: item.Fact.Description,
				Direction:   item.Fact.Direction,
				Scope:       scope,
			})
			if err != nil {
				output.Failed++
				slog.Warn("Failed to reclassify fact", "fact_id", item.Fact.ID, "error", err)
				continue
			}
			if !changed(item.Enrichment, classified.Classification) {
				continue
			}
			replacements = append(replacements, newLoadedFact(item.Fact, classified.Classification))
		}

		if len(replacements) > 0 {
			updated, err := uc.factRepo.ReplaceEnrichments(ctx, replacements)
			if err != nil {
				return output, fmt.Errorf("failed to replace enrichments: %w", err)
			}
			output.Updated += updated
		}

		lastID := page[len(page)-1].Fact.ID
		filter.AfterID = &lastID
		if len(page) < batchSize {
			break
		}
	}

	slog.Info("Re-enrichment finished",
		"scanned", output.Scanned,
		"updated", output.Updated,
		"manual", output.Manual,
		"failed", output.Failed,
	)
	return output, nil
}

func changed(current *entity.Enrichment, next *entity.Classification) bool {
	if current == nil {
		return true
	}
	if current.CategoryCode != next.CategoryCode || current.Source != next.Source {
		return true
	}
	if !sameString(current.SubcategoryCode, next.SubcategoryCode) {
		return true
	}
	if (current.MatchedRuleID == nil) != (next.MatchedRuleID == nil) {
		return true
	}
	return current.MatchedRuleID != nil && *current.MatchedRuleID != *next.MatchedRuleID
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
