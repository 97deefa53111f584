package rule

import (
	"context"
	"testing"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	"github.com/finance-tracker/categorizer/internal/domain/valueobject"
)

func newTestMatcher(metrics *recordingMetrics) *Matcher {
	return NewMatcher(valueobject.DefaultMatchingConfig(), NewPatternCache(), metrics)
}

func TestMatcher_PriorityOrdering(t *testing.T) {
	repo := &fakeRuleRepo{}
	low := newTestRule(entity.AppliesToMerchant, `AMAZON`, "shopping", 20, entity.GlobalScope, entity.ProvenanceSeed)
	high := newTestRule(entity.AppliesToMerchant, `AMAZON\s+PAY`, "bills", 10, entity.GlobalScope, entity.ProvenanceSeed)
	repo.rules = []*entity.Rule{low, high}

	rules, _ := repo.FindActiveForScope(context.Background(), entity.GlobalScope)
	m := newTestMatcher(newRecordingMetrics())

	for i := 0; i < 5; i++ {
		got, err := m.Match(context.Background(), rules, MatchInput{Merchant: "AMAZON PAY"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.Rule.ID != high.ID {
			t.Fatalf("expected priority-10 rule, got %+v", got)
		}
		if got.Kind != entity.MatchKindRegex || got.Confidence != 0.85 {
			t.Errorf("unexpected kind/confidence: %s %.2f", got.Kind, got.Confidence)
		}
	}
}

func TestMatcher_AppliesTo(t *testing.T) {
	descRule := newTestRule(entity.AppliesToDescription, `NSE\s*CLEARING`, "investments", 10, entity.GlobalScope, entity.ProvenanceSeed)
	merchRule := newTestRule(entity.AppliesToMerchant, `CLEARING`, "others", 5, entity.GlobalScope, entity.ProvenanceSeed)
	rules := []*entity.Rule{merchRule, descRule}
	m := newTestMatcher(newRecordingMetrics())

	t.Run("description rule ignores merchant text", func(t *testing.T) {
		got, _ := m.Match(context.Background(), rules, MatchInput{Merchant: "XYZ", Description: "ACH D- NSE CLEARING LTD-123"})
		if got == nil || got.Rule.ID != descRule.ID {
			t.Fatalf("expected description rule, got %+v", got)
		}
	})

	t.Run("description rule sees normalized description", func(t *testing.T) {
		got, _ := m.Match(context.Background(), []*entity.Rule{descRule}, MatchInput{Description: "nse-clearing"})
		if got == nil {
			t.Fatal("expected a match on the normalized description")
		}
	})

	t.Run("merchant rule ignores description", func(t *testing.T) {
		got, _ := m.Match(context.Background(), []*entity.Rule{merchRule}, MatchInput{Merchant: "", Description: "CLEARING"})
		if got != nil {
			t.Fatalf("expected no match, got %+v", got)
		}
	})
}

func TestMatcher_SkipsMalformedRules(t *testing.T) {
	metrics := newRecordingMetrics()
	m := newTestMatcher(metrics)

	broken := newTestRule(entity.AppliesToMerchant, `SWIGGY(`, "dining", 1, entity.GlobalScope, entity.ProvenanceOps)
	good := newTestRule(entity.AppliesToMerchant, `SWIGGY`, "dining", 2, entity.GlobalScope, entity.ProvenanceOps)

	got, err := m.Match(context.Background(), []*entity.Rule{broken, good}, MatchInput{Merchant: "SWIGGY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Rule.ID != good.ID {
		t.Fatalf("expected the valid rule to match, got %+v", got)
	}
	if metrics.malformed != 1 {
		t.Errorf("malformed count = %d, want 1", metrics.malformed)
	}
}

func TestMatcher_FuzzyThreshold(t *testing.T) {
	rule := newTestRule(entity.AppliesToMerchant, `(?i)\bDMARTSTORE\b`, "groceries", 10, entity.GlobalScope, entity.ProvenanceLearned)
	m := newTestMatcher(newRecordingMetrics())

	t.Run("0.80 matches", func(t *testing.T) {
		got, _ := m.Match(context.Background(), []*entity.Rule{rule}, MatchInput{Merchant: "DMARTSTOXX"})
		if got == nil {
			t.Fatal("expected fuzzy match")
		}
		if got.Kind != entity.MatchKindFuzzy {
			t.Errorf("kind = %s, want fuzzy", got.Kind)
		}
		if got.Confidence < 0.79 || got.Confidence > 0.81 {
			t.Errorf("confidence = %.3f, want ~0.80", got.Confidence)
		}
	})

	t.Run("0.70 does not match", func(t *testing.T) {
		got, _ := m.Match(context.Background(), []*entity.Rule{rule}, MatchInput{Merchant: "DMARTSTXYZ"})
		if got != nil {
			t.Fatalf("expected no match, got %+v", got)
		}
	})

	t.Run("short merchants are not fuzzy matched", func(t *testing.T) {
		short := newTestRule(entity.AppliesToMerchant, `AB`, "groceries", 10, entity.GlobalScope, entity.ProvenanceSeed)
		got, _ := m.Match(context.Background(), []*entity.Rule{short}, MatchInput{Merchant: "AC"})
		if got != nil {
			t.Fatalf("expected no match, got %+v", got)
		}
	})

	t.Run("description rules are not fuzzy candidates", func(t *testing.T) {
		desc := newTestRule(entity.AppliesToDescription, `DMARTSTORE`, "groceries", 10, entity.GlobalScope, entity.ProvenanceSeed)
		got, _ := m.Match(context.Background(), []*entity.Rule{desc}, MatchInput{Merchant: "DMARTSTOXX"})
		if got != nil {
			t.Fatalf("expected no match, got %+v", got)
		}
	})
}

func TestMatcher_FuzzyTieGoesToHigherPrecedence(t *testing.T) {
	first := newTestRule(entity.AppliesToMerchant, `DMARTSTORE`, "groceries", 10, entity.GlobalScope, entity.ProvenanceSeed)
	second := newTestRule(entity.AppliesToMerchant, `DMARTSTORE`, "shopping", 20, entity.GlobalScope, entity.ProvenanceSeed)
	m := newTestMatcher(newRecordingMetrics())

	got, _ := m.Match(context.Background(), []*entity.Rule{first, second}, MatchInput{Merchant: "DMARTSTOXX"})
	if got == nil || got.Rule.ID != first.ID {
		t.Fatalf("expected the priority-10 rule, got %+v", got)
	}
}

func TestMatcher_StopsOnDoneContext(t *testing.T) {
	rule := newTestRule(entity.AppliesToMerchant, `AMAZON`, "shopping", 10, entity.GlobalScope, entity.ProvenanceSeed)
	m := newTestMatcher(newRecordingMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := m.Match(ctx, []*entity.Rule{rule}, MatchInput{Merchant: "AMAZON"})
	if err == nil {
		t.Fatal("expected context error")
	}
	if got != nil {
		t.Fatalf("expected no result, got %+v", got)
	}
}

func TestMatcher_RulesWithoutCategoryAreSkipped(t *testing.T) {
	marker := newTestRule(entity.AppliesToMerchant, `AMAZON`, "", 1, entity.GlobalScope, entity.ProvenanceSeed)
	categorized := newTestRule(entity.AppliesToMerchant, `AMAZON`, "shopping", 2, entity.GlobalScope, entity.ProvenanceSeed)
	m := newTestMatcher(newRecordingMetrics())

	got, _ := m.Match(context.Background(), []*entity.Rule{marker, categorized}, MatchInput{Merchant: "AMAZON"})
	if got == nil || got.Rule.ID != categorized.ID {
		t.Fatalf("expected the categorized rule, got %+v", got)
	}
}
