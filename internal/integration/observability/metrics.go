// Package observability provides Prometheus metrics for categorization and loading.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
)

const namespace = "categorizer"

// Metrics implements adapter.CategorizationMetrics with Prometheus collectors.
type Metrics struct {
	malformedRules         *prometheus.CounterVec
	classificationTimeouts prometheus.Counter
	staleRulesServed       *prometheus.CounterVec
	classifications        *prometheus.CounterVec
	learnOutcomes          *prometheus.CounterVec
	loaderRows             *prometheus.CounterVec
}

var _ adapter.CategorizationMetrics = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		malformedRules: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "malformed_rules_total",
				Help:      "Rules skipped because their pattern does not compile",
			},
			[]string{"scope"},
		),
		classificationTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classification_timeouts_total",
				Help:      "Classifications that hit their deadline and fell back",
			},
		),
		staleRulesServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_rules_served_total",
				Help:      "Rule cache reads answered from an expired entry because the store failed",
			},
			[]string{"scope"},
		),
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Classifications by source",
			},
			[]string{"source"},
		),
		learnOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "learn_outcomes_total",
				Help:      "Correction learning outcomes",
			},
			[]string{"outcome"},
		),
		loaderRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loader_rows_total",
				Help:      "Staging rows handled by the loader by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// MalformedRule counts a skipped rule.
func (m *Metrics) MalformedRule(scope string) {
	m.malformedRules.WithLabelValues(scope).Inc()
}

// ClassificationTimeout counts a classification that ran out of time.
func (m *Metrics) ClassificationTimeout() {
	m.classificationTimeouts.Inc()
}

// StaleRulesServed counts a stale cache read.
func (m *Metrics) StaleRulesServed(scope string) {
	m.staleRulesServed.WithLabelValues(scope).Inc()
}

// Classified counts a classification by source.
func (m *Metrics) Classified(source string) {
	m.classifications.WithLabelValues(source).Inc()
}

// LearnOutcome counts a learning outcome.
func (m *Metrics) LearnOutcome(outcome string) {
	m.learnOutcomes.WithLabelValues(outcome).Inc()
}

// LoaderRow counts a loader row outcome.
func (m *Metrics) LoaderRow(outcome string) {
	m.loaderRows.WithLabelValues(outcome).Inc()
}
