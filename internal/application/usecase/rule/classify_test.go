package rule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/domain/valueobject"
)

func newTestClassifier(repo *fakeRuleRepo, metrics *recordingMetrics) *ClassifyUseCase {
	cache := NewRuleCache(repo, nil, metrics, DefaultRuleCacheConfig())
	cfg := valueobject.DefaultMatchingConfig()
	return NewClassifyUseCase(cache, NewMatcher(cfg, NewPatternCache(), metrics), valueobject.DefaultFallbackPolicy(), cfg, metrics)
}

func TestClassify_RuleMatch(t *testing.T) {
	rule := entity.NewRule(entity.AppliesToMerchant, `AMAZON`, "shopping", strPtr("online_shopping"), 10, entity.GlobalScope, entity.ProvenanceSeed, nil)
	uc := newTestClassifier(&fakeRuleRepo{rules: []*entity.Rule{rule}}, newRecordingMetrics())

	out, err := uc.Execute(context.Background(), ClassifyInput{
		MerchantRaw: "Amazon Pay",
		Direction:   entity.DirectionDebit,
		Scope:       "tenant-a",
	})
	require.NoError(t, err)

	c := out.Classification
	assert.Equal(t, "shopping", c.CategoryCode)
	assert.Equal(t, "online_shopping", c.Subcategory())
	assert.Equal(t, rule.ID, *c.MatchedRuleID)
	assert.Equal(t, entity.EnrichmentSourceRule, c.Source)
	assert.InDelta(t, 0.85, c.Confidence, 0.0001)
	assert.Equal(t, "AMAZON PAY", c.NormalizedMerchant)
}

func TestClassify_TenantRulesOnlyInTheirScope(t *testing.T) {
	rule := newTestRule(entity.AppliesToMerchant, `SHOBA`, "dining", 10, "tenant-a", entity.ProvenanceLearned)
	uc := newTestClassifier(&fakeRuleRepo{rules: []*entity.Rule{rule}}, newRecordingMetrics())
	ctx := context.Background()

	own, err := uc.Execute(ctx, ClassifyInput{MerchantRaw: "SHOBA", Direction: entity.DirectionDebit, Scope: "tenant-a"})
	require.NoError(t, err)
	assert.Equal(t, "dining", own.Classification.CategoryCode)

	other, err := uc.Execute(ctx, ClassifyInput{MerchantRaw: "SHOBA", Direction: entity.DirectionDebit, Scope: "tenant-b"})
	require.NoError(t, err)
	assert.Equal(t, entity.EnrichmentSourceFallback, other.Classification.Source)
}

func TestClassify_FallbackIsDirectionAware(t *testing.T) {
	uc := newTestClassifier(&fakeRuleRepo{}, newRecordingMetrics())
	ctx := context.Background()

	credit, err := uc.Execute(ctx, ClassifyInput{MerchantRaw: "RAVI KUMAR", Direction: entity.DirectionCredit})
	require.NoError(t, err)
	assert.Equal(t, "transfers", credit.Classification.CategoryCode)
	assert.Nil(t, credit.Classification.MatchedRuleID)
	assert.InDelta(t, 0.5, credit.Classification.Confidence, 0.0001)

	debit, err := uc.Execute(ctx, ClassifyInput{MerchantRaw: "RAVI KUMAR", Direction: entity.DirectionDebit})
	require.NoError(t, err)
	assert.Equal(t, "shopping", debit.Classification.CategoryCode)
}

func TestClassify_ExtractsMerchantFromDescription(t *testing.T) {
	rule := newTestRule(entity.AppliesToMerchant, `SWIGGY`, "dining", 10, entity.GlobalScope, entity.ProvenanceSeed)
	uc := newTestClassifier(&fakeRuleRepo{rules: []*entity.Rule{rule}}, newRecordingMetrics())

	out, err := uc.Execute(context.Background(), ClassifyInput{
		MerchantRaw: "nan",
		Description: "UPI-SWIGGY LIMITED-swiggy@icici-ICIC0000",
		Direction:   entity.DirectionDebit,
	})
	require.NoError(t, err)
	assert.Equal(t, "dining", out.Classification.CategoryCode)
	assert.Equal(t, "SWIGGY LIMITED", out.Classification.NormalizedMerchant)
}

func TestClassify_TimeoutFallsBack(t *testing.T) {
	rule := newTestRule(entity.AppliesToMerchant, `AMAZON`, "shopping", 10, entity.GlobalScope, entity.ProvenanceSeed)
	metrics := newRecordingMetrics()
	uc := newTestClassifier(&fakeRuleRepo{rules: []*entity.Rule{rule}}, metrics)

	// Warm the cache so the expired context is seen by the matcher.
	_, err := uc.Execute(context.Background(), ClassifyInput{MerchantRaw: "AMAZON"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	out, err := uc.Execute(ctx, ClassifyInput{MerchantRaw: "AMAZON", Direction: entity.DirectionDebit})
	require.NoError(t, err)
	assert.True(t, out.TimedOut)
	assert.Equal(t, entity.EnrichmentSourceFallback, out.Classification.Source)
	assert.Equal(t, 1, metrics.timeouts)
}

func TestClassify_RulesUnavailable(t *testing.T) {
	uc := newTestClassifier(&fakeRuleRepo{findErr: errors.New("down")}, newRecordingMetrics())

	_, err := uc.Execute(context.Background(), ClassifyInput{MerchantRaw: "AMAZON"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerror.ErrRulesUnavailable))
}
