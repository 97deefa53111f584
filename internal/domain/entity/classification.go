// Package entity defines the core business entities for the domain layer.
package entity

import (
	"github.com/google/uuid"
)

// MatchKind tells how a rule matched.
type MatchKind string

const (
	MatchKindRegex MatchKind = "regex"
	MatchKindFuzzy MatchKind = "fuzzy"
)

// MatchResult is a rule hit produced by the matcher.
type MatchResult struct {
	Rule        *Rule
	Kind        MatchKind
	MatchedText string
	Score       float64 // Similarity for fuzzy hits, 1 for regex hits
	Confidence  float64
}

// Classification is the answer to "what category is this text".
type Classification struct {
	CategoryCode       string
	SubcategoryCode    *string
	Confidence         float64
	MatchedRuleID      *uuid.UUID
	Source             EnrichmentSource
	NormalizedMerchant string
}

// Subcategory returns the subcategory code or the empty string.
func (c *Classification) Subcategory() string {
	if c.SubcategoryCode == nil {
		return ""
	}
	return *c.SubcategoryCode
}
