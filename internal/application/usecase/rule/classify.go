package rule

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	"github.com/finance-tracker/categorizer/internal/domain/merchant"
	"github.com/finance-tracker/categorizer/internal/domain/valueobject"
)

var tracer = otel.Tracer("github.com/finance-tracker/categorizer/usecase/rule")

// ClassifyInput represents the input for classification.
type ClassifyInput struct {
	MerchantRaw string
	Description string
	Direction   entity.Direction
	Scope       entity.Scope
}

// ClassifyOutput represents the output of classification.
type ClassifyOutput struct {
	Classification *entity.Classification
	Match          *entity.MatchResult // nil when the fallback policy decided
	TimedOut       bool
}

// ClassifyUseCase assigns a category pair to transaction text.
type ClassifyUseCase struct {
	cache    *RuleCache
	matcher  *Matcher
	fallback valueobject.FallbackPolicy
	cfg      valueobject.MatchingConfig
	metrics  adapter.CategorizationMetrics
}

// NewClassifyUseCase creates a new ClassifyUseCase instance.
func NewClassifyUseCase(
	cache *RuleCache,
	matcher *Matcher,
	fallback valueobject.FallbackPolicy,
	cfg valueobject.MatchingConfig,
	metrics adapter.CategorizationMetrics,
) *ClassifyUseCase {
	if metrics == nil {
		metrics = adapter.NopMetrics{}
	}
	return &ClassifyUseCase{
		cache:    cache,
		matcher:  matcher,
		fallback: fallback,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// Execute classifies the input. Only a rule store outage with nothing cached is an error;
// an expired ctx is treated as "no rule matched" and the fallback policy decides.
func (uc *ClassifyUseCase) Execute(ctx context.Context, input ClassifyInput) (*ClassifyOutput, error) {
	ctx, span := tracer.Start(ctx, "rule.Classify")
	defer span.End()

	normalized := merchant.Resolve(input.MerchantRaw, input.Description)
	output := &ClassifyOutput{}

	rules, err := uc.cache.Get(ctx, input.Scope)
	if err != nil && ctx.Err() == nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rules unavailable")
		return nil, err
	}

	var match *entity.MatchResult
	if err == nil {
		match, err = uc.matcher.Match(ctx, rules, MatchInput{
			Merchant:    normalized,
			Description: input.Description,
			Scope:       input.Scope,
		})
	}
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, err
		}
		output.TimedOut = true
		uc.metrics.ClassificationTimeout()
		slog.Warn("Classification timed out, using fallback",
			"scope", input.Scope,
			"merchant", normalized,
		)
	}

	if match != nil {
		ruleID := match.Rule.ID
		source := entity.EnrichmentSourceRule
		if match.Kind == entity.MatchKindFuzzy {
			source = entity.EnrichmentSourceFuzzy
		}
		output.Match = match
		output.Classification = &entity.Classification{
			CategoryCode:       match.Rule.CategoryCode,
			SubcategoryCode:    match.Rule.SubcategoryCode,
			Confidence:         match.Confidence,
			MatchedRuleID:      &ruleID,
			Source:             source,
			NormalizedMerchant: normalized,
		}
	} else {
		category, subcategory := uc.fallback.Classify(normalized, input.Description, input.Direction)
		output.Classification = &entity.Classification{
			CategoryCode:       category,
			SubcategoryCode:    subcategory,
			Confidence:         uc.cfg.FallbackConfidence,
			Source:             entity.EnrichmentSourceFallback,
			NormalizedMerchant: normalized,
		}
	}

	uc.metrics.Classified(string(output.Classification.Source))
	span.SetAttributes(
		attribute.String("classification.source", string(output.Classification.Source)),
		attribute.String("classification.category", output.Classification.CategoryCode),
	)
	return output, nil
}
