// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

// Learning outcomes reported to CategorizationMetrics.
const (
	LearnOutcomeCreated     = "created"
	LearnOutcomeRateLimited = "rate_limited"
	LearnOutcomeWeak        = "weak_pattern"
	LearnOutcomeInvalid     = "invalid"
	LearnOutcomeError       = "error"
)

// Loader row outcomes reported to CategorizationMetrics.
const (
	RowOutcomeInserted  = "inserted"
	RowOutcomeDuplicate = "duplicate"
	RowOutcomeFailed    = "failed"
)

// CategorizationMetrics records operational signals of the engine.
type CategorizationMetrics interface {
	MalformedRule(scope string)
	ClassificationTimeout()
	StaleRulesServed(scope string)
	Classified(source string)
	LearnOutcome(outcome string)
	LoaderRow(outcome string)
}

// NopMetrics discards every signal.
type NopMetrics struct{}

func (NopMetrics) MalformedRule(string)    {}
func (NopMetrics) ClassificationTimeout()  {}
func (NopMetrics) StaleRulesServed(string) {}
func (NopMetrics) Classified(string)       {}
func (NopMetrics) LearnOutcome(string)     {}
func (NopMetrics) LoaderRow(string)        {}
