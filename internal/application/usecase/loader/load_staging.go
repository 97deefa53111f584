package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/application/usecase/category"
	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/domain/merchant"
)

var tracer = otel.Tracer("github.com/finance-tracker/categorizer/usecase/loader")

// Classifier assigns a category pair to transaction text.
type Classifier interface {
	Execute(ctx context.Context, input rule.ClassifyInput) (*rule.ClassifyOutput, error)
}

// RuleSource provides the rule set of a scope.
type RuleSource interface {
	Get(ctx context.Context, scope entity.Scope) ([]*entity.Rule, error)
}

// Config contains loader limits.
type Config struct {
	RowTimeout     time.Duration
	MaxRowAttempts int // failed loads before a row is parked; 0 never parks
}

// DefaultConfig returns the default loader limits.
func DefaultConfig() Config {
	return Config{
		RowTimeout:     2 * time.Second,
		MaxRowAttempts: 3,
	}
}

// LoadStagingInput represents the input for a load run.
type LoadStagingInput struct {
	UserID uuid.UUID
	Scope  entity.Scope // Optional, defaults to the user's own scope
}

// LoadStagingOutput represents the outcome of a load run.
// Counts are filled even when the run stops early.
type LoadStagingOutput struct {
	Pending   int
	Inserted  int
	Duplicate int
	Failed    int
	Parked    int // failed rows that used up their attempts
}

// LoadStagingUseCase moves a user's pending staging rows into facts with enrichments.
// Each row commits on its own; a failing row is counted and the run continues.
// Only an unreachable fact store stops the run.
type LoadStagingUseCase struct {
	stagingRepo adapter.StagingRepository
	factRepo    adapter.FactRepository
	rules       RuleSource
	classifier  Classifier
	notifier    adapter.AggregateNotifier
	metrics     adapter.CategorizationMetrics
	cfg         Config
}

// NewLoadStagingUseCase creates a new LoadStagingUseCase instance. notifier may be nil.
func NewLoadStagingUseCase(
	stagingRepo adapter.StagingRepository,
	factRepo adapter.FactRepository,
	rules RuleSource,
	classifier Classifier,
	notifier adapter.AggregateNotifier,
	metrics adapter.CategorizationMetrics,
	cfg Config,
) *LoadStagingUseCase {
	if metrics == nil {
		metrics = adapter.NopMetrics{}
	}
	return &LoadStagingUseCase{
		stagingRepo: stagingRepo,
		factRepo:    factRepo,
		rules:       rules,
		classifier:  classifier,
		notifier:    notifier,
		metrics:     metrics,
		cfg:         cfg,
	}
}

type rowOutcome int

const (
	rowInserted rowOutcome = iota
	rowDuplicate
	rowFailed
	rowStoreUnavailable
)

// Execute runs the load. It is idempotent: rows whose fingerprint is already loaded are
// skipped and marked processed.
func (uc *LoadStagingUseCase) Execute(ctx context.Context, input LoadStagingInput) (*LoadStagingOutput, error) {
	scope := input.Scope
	if scope == "" {
		scope = entity.Scope(input.UserID.String())
	}
	ctx, span := tracer.Start(ctx, "loader.LoadStaging",
		trace.WithAttributes(attribute.String("loader.scope", string(scope))),
	)
	defer span.End()

	logger := slog.With("user_id", input.UserID, "scope", scope)
	output := &LoadStagingOutput{}

	// Rules are fetched once up front so a rule store outage fails the batch, not every row.
	if _, err := uc.rules.Get(ctx, scope); err != nil {
		return output, domainerror.NewLoaderError(domainerror.ErrCodeLoadFailed, "rules unavailable", err)
	}

	rows, err := uc.stagingRepo.FindPendingByUser(ctx, input.UserID)
	if err != nil {
		return output, fmt.Errorf("failed to find pending staging rows: %w", err)
	}
	output.Pending = len(rows)

	var (
		alreadyLoaded []uuid.UUID
		runErr        error
	)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			runErr = domainerror.NewLoaderError(domainerror.ErrCodeLoadFailed, "load cancelled", err)
			break
		}

		outcome, err := uc.loadRow(ctx, row, scope)
		switch outcome {
		case rowInserted:
			output.Inserted++
			uc.metrics.LoaderRow(adapter.RowOutcomeInserted)
		case rowDuplicate:
			output.Duplicate++
			alreadyLoaded = append(alreadyLoaded, row.ID)
			uc.metrics.LoaderRow(adapter.RowOutcomeDuplicate)
		case rowFailed:
			output.Failed++
			uc.metrics.LoaderRow(adapter.RowOutcomeFailed)
			if uc.recordFailure(ctx, row, err, logger) {
				output.Parked++
			}
		case rowStoreUnavailable:
			runErr = domainerror.NewLoaderError(
				domainerror.ErrCodeStoreUnavailable,
				fmt.Sprintf("fact store unreachable after %d rows", output.Inserted+output.Duplicate+output.Failed),
				fmt.Errorf("%w: %v", domainerror.ErrStoreUnavailable, err),
			)
		}
		if runErr != nil {
			break
		}
	}

	if len(alreadyLoaded) > 0 {
		if err := uc.stagingRepo.MarkProcessed(context.WithoutCancel(ctx), alreadyLoaded); err != nil {
			logger.Warn("Failed to mark duplicate staging rows processed", "rows", len(alreadyLoaded), "error", err)
		}
	}

	if output.Inserted > 0 {
		uc.notify(context.WithoutCancel(ctx), input.UserID, output, logger)
	}

	span.SetAttributes(
		attribute.Int("loader.pending", output.Pending),
		attribute.Int("loader.inserted", output.Inserted),
		attribute.Int("loader.duplicate", output.Duplicate),
		attribute.Int("loader.failed", output.Failed),
		attribute.Int("loader.parked", output.Parked),
	)
	logger.Info("Staging load finished",
		"pending", output.Pending,
		"inserted", output.Inserted,
		"duplicate", output.Duplicate,
		"failed", output.Failed,
		"parked", output.Parked,
	)

	if runErr != nil {
		span.RecordError(runErr)
		return output, runErr
	}
	return output, nil
}

func (uc *LoadStagingUseCase) loadRow(ctx context.Context, row *entity.StagingRow, scope entity.Scope) (rowOutcome, error) {
	normalized := merchant.Resolve(row.MerchantRaw, row.DescriptionRaw)
	fingerprint := Fingerprint(row, normalized)

	// The fingerprint lookup touches no row data, so its failure means the store itself is down.
	exists, err := uc.factRepo.ExistsByFingerprint(ctx, row.UserID, fingerprint)
	if err != nil {
		return rowStoreUnavailable, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	if exists {
		return rowDuplicate, nil
	}

	rowCtx, cancel := context.WithTimeout(ctx, uc.cfg.RowTimeout)
	classified, err := uc.classifier.Execute(rowCtx, rule.ClassifyInput{
		MerchantRaw: row.MerchantRaw,
		Description: row.DescriptionRaw,
		Direction:   row.Direction,
		Scope:       scope,
	})
	cancel()
	if err != nil {
		return rowFailed, fmt.Errorf("failed to classify: %w", err)
	}

	loaded := newLoadedFact(entity.NewFact(row, normalized, fingerprint), classified.Classification)
	loaded.StagingID = row.ID

	if err := uc.factRepo.InsertLoaded(ctx, loaded); err != nil {
		if errors.Is(err, domainerror.ErrDuplicateFact) {
			// A concurrent run won the race for this fingerprint.
			return rowDuplicate, nil
		}
		return rowFailed, fmt.Errorf("failed to insert fact: %w", err)
	}
	return rowInserted, nil
}

// recordFailure stores the row's load error and reports whether the row was parked.
func (uc *LoadStagingUseCase) recordFailure(ctx context.Context, row *entity.StagingRow, cause error, logger *slog.Logger) bool {
	park := uc.cfg.MaxRowAttempts > 0 && row.LoadAttempts+1 >= uc.cfg.MaxRowAttempts
	logger.Warn("Staging row failed",
		"staging_id", row.ID,
		"attempt", row.LoadAttempts+1,
		"parked", park,
		"error", cause,
	)
	if err := uc.stagingRepo.RecordLoadFailure(context.WithoutCancel(ctx), row.ID, cause.Error(), park); err != nil {
		logger.Warn("Failed to record staging row failure", "staging_id", row.ID, "error", err)
		return false
	}
	return park
}

func (uc *LoadStagingUseCase) notify(ctx context.Context, userID uuid.UUID, output *LoadStagingOutput, logger *slog.Logger) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.InvalidateAggregates(ctx, userID.String()); err != nil {
		logger.Warn("Failed to invalidate aggregate caches", "error", err)
	}
	event := adapter.LoadCompletedEvent{
		UserID:   userID.String(),
		Inserted: output.Inserted,
		Skipped:  output.Duplicate,
		Failed:   output.Failed,
	}
	if err := uc.notifier.PublishLoadCompleted(ctx, event); err != nil {
		logger.Warn("Failed to publish load completion", "error", err)
	}
}

// newLoadedFact pairs a fact with its enrichment and the reference rows the
// classification needs, derived for the case they do not exist yet.
func newLoadedFact(fact *entity.Fact, c *entity.Classification) *entity.LoadedFact {
	cat := category.DeriveCategory(c.CategoryCode)
	var sub *entity.Subcategory
	if c.SubcategoryCode != nil && *c.SubcategoryCode != "" {
		sub = category.DeriveSubcategory(*c.SubcategoryCode, c.CategoryCode)
	}
	return &entity.LoadedFact{
		Fact:        fact,
		Enrichment:  entity.NewEnrichment(fact.ID, c, cat.Bucket),
		Category:    cat,
		Subcategory: sub,
	}
}
