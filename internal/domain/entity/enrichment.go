// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentSource records how an enrichment was produced.
type EnrichmentSource string

const (
	EnrichmentSourceRule     EnrichmentSource = "rule"
	EnrichmentSourceFuzzy    EnrichmentSource = "fuzzy"
	EnrichmentSourceFallback EnrichmentSource = "fallback"
	EnrichmentSourceManual   EnrichmentSource = "manual"
)

// ManualConfidence marks an enrichment set by a person; re-enrichment never overrides it.
const ManualConfidence = 0.99

// Enrichment is the 1:1 classification snapshot of a Fact.
// It is immutable once written; only a re-enrichment pass or a manual correction replaces it.
type Enrichment struct {
	FactID          uuid.UUID
	MatchedRuleID   *uuid.UUID
	CategoryCode    string
	SubcategoryCode *string
	Bucket          Bucket
	Confidence      float64
	Source          EnrichmentSource
	ComputedAt      time.Time
}

// NewEnrichment builds an enrichment for factID from a classification.
func NewEnrichment(factID uuid.UUID, c *Classification, bucket Bucket) *Enrichment {
	return &Enrichment{
		FactID:          factID,
		MatchedRuleID:   c.MatchedRuleID,
		CategoryCode:    c.CategoryCode,
		SubcategoryCode: c.SubcategoryCode,
		Bucket:          bucket,
		Confidence:      c.Confidence,
		Source:          c.Source,
		ComputedAt:      time.Now().UTC(),
	}
}

// IsManual reports whether the enrichment is a manual override.
func (e *Enrichment) IsManual() bool {
	return e.Source == EnrichmentSourceManual
}
