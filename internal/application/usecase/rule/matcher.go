package rule

import (
	"context"
	"log/slog"
	"strings"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	"github.com/finance-tracker/categorizer/internal/domain/merchant"
	"github.com/finance-tracker/categorizer/internal/domain/valueobject"
)

// MatchInput is the text a rule set is evaluated against.
type MatchInput struct {
	Merchant    string // normalized merchant
	Description string // raw description
	Scope       entity.Scope
}

// Matcher walks an ordered rule set: regex rules first, then fuzzy similarity
// against the literal text of merchant rules.
type Matcher struct {
	cfg      valueobject.MatchingConfig
	patterns *PatternCache
	metrics  adapter.CategorizationMetrics
}

// NewMatcher creates a new Matcher.
func NewMatcher(cfg valueobject.MatchingConfig, patterns *PatternCache, metrics adapter.CategorizationMetrics) *Matcher {
	if patterns == nil {
		patterns = NewPatternCache()
	}
	if metrics == nil {
		metrics = adapter.NopMetrics{}
	}
	return &Matcher{
		cfg:      cfg,
		patterns: patterns,
		metrics:  metrics,
	}
}

// PrunePatterns drops compiled patterns of rules no longer cached. It is registered with
// RuleCache.OnRefresh.
func (m *Matcher) PrunePatterns(live map[string]struct{}) {
	m.patterns.Retain(live)
}

// Match returns the winning rule for input, or nil.
// rules must already be in precedence order. A done ctx stops the walk; the error is
// ctx.Err() and the result is nil.
func (m *Matcher) Match(ctx context.Context, rules []*entity.Rule, input MatchInput) (*entity.MatchResult, error) {
	if result, err := m.matchRegex(ctx, rules, input); result != nil || err != nil {
		return result, err
	}
	return m.matchFuzzy(ctx, rules, input)
}

func (m *Matcher) matchRegex(ctx context.Context, rules []*entity.Rule, input MatchInput) (*entity.MatchResult, error) {
	normalizedDescription := ""
	if input.Description != "" {
		normalizedDescription = merchant.Normalize(input.Description)
	}

	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.CategoryCode == "" {
			continue
		}

		re, err := m.patterns.Get(r)
		if err != nil {
			slog.Warn("Skipping malformed rule",
				"rule_id", r.ID,
				"scope", r.Scope,
				"pattern", r.Pattern,
				"error", err,
			)
			m.metrics.MalformedRule(string(r.Scope))
			continue
		}

		var candidates []string
		switch r.AppliesTo {
		case entity.AppliesToMerchant:
			candidates = []string{input.Merchant}
		case entity.AppliesToDescription:
			candidates = []string{input.Description, normalizedDescription}
		}

		for _, text := range candidates {
			if text != "" && re.MatchString(text) {
				return &entity.MatchResult{
					Rule:        r,
					Kind:        entity.MatchKindRegex,
					MatchedText: text,
					Score:       1,
					Confidence:  r.Confidence(),
				}, nil
			}
		}
	}
	return nil, nil
}

func (m *Matcher) matchFuzzy(ctx context.Context, rules []*entity.Rule, input MatchInput) (*entity.MatchResult, error) {
	name := strings.TrimSpace(input.Merchant)
	if len(name) < m.cfg.FuzzyMinMerchantLength {
		return nil, nil
	}

	var (
		best      *entity.Rule
		bestScore float64
	)
	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.AppliesTo != entity.AppliesToMerchant || r.CategoryCode == "" {
			continue
		}

		bag := strings.Join(patternTokens(r.Pattern), " ")
		if len(bag) < m.cfg.FuzzyMinMerchantLength {
			continue
		}

		// Strictly greater: on ties the earlier, higher-precedence rule stays.
		if score := Similarity(name, bag, m.cfg.WordOverlapWeight); score > bestScore {
			best, bestScore = r, score
		}
	}

	if best == nil || !m.cfg.AcceptsFuzzy(bestScore) {
		return nil, nil
	}
	return &entity.MatchResult{
		Rule:        best,
		Kind:        entity.MatchKindFuzzy,
		MatchedText: name,
		Score:       bestScore,
		Confidence:  bestScore,
	}, nil
}
