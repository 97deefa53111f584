package observability

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.MalformedRule("tenant-a")
	m.MalformedRule("tenant-a")
	m.ClassificationTimeout()
	m.StaleRulesServed("global")
	m.Classified("rule")
	m.Classified("fallback")
	m.LearnOutcome(adapter.LearnOutcomeCreated)
	m.LearnOutcome(adapter.LearnOutcomeRateLimited)
	m.LoaderRow(adapter.RowOutcomeInserted)
	m.LoaderRow(adapter.RowOutcomeDuplicate)
	m.LoaderRow(adapter.RowOutcomeDuplicate)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.malformedRules.WithLabelValues("tenant-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classificationTimeouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleRulesServed.WithLabelValues("global")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.learnOutcomes.WithLabelValues("rate_limited")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loaderRows.WithLabelValues("duplicate")))

	expected := `
# HELP categorizer_classifications_total Classifications by source
# TYPE categorizer_classifications_total counter
categorizer_classifications_total{source="fallback"} 1
categorizer_classifications_total{source="rule"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "categorizer_classifications_total"))
}

func TestNewMetricsRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() { NewMetrics(reg) })
}
