// Package entity defines the core business entities for the domain layer.
package entity

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// AppliesTo selects which text a rule pattern is evaluated against.
type AppliesTo string

const (
	AppliesToMerchant    AppliesTo = "merchant"
	AppliesToDescription AppliesTo = "description"
)

// Provenance records where a rule came from.
type Provenance string

const (
	ProvenanceSeed    Provenance = "seed"
	ProvenanceLearned Provenance = "learned"
	ProvenanceOps     Provenance = "ops"
)

// Scope partitions rule visibility. GlobalScope rules apply to every tenant.
type Scope string

// GlobalScope is the scope shared by all tenants.
const GlobalScope Scope = "global"

// IsGlobal reports whether the scope is the shared global scope.
func (s Scope) IsGlobal() bool {
	return s == "" || s == GlobalScope
}

// Normalize maps the empty scope onto GlobalScope.
func (s Scope) Normalize() Scope {
	if s == "" {
		return GlobalScope
	}
	return s
}

// Rule represents a classification rule.
// Within a (Scope, AppliesTo, PatternFingerprint) tuple there is at most one rule;
// writers upsert instead of inserting duplicates.
type Rule struct {
	ID                 uuid.UUID
	AppliesTo          AppliesTo
	Pattern            string // Regex text, evaluated case-insensitively
	PatternFingerprint string // SHA-1 of Pattern
	CategoryCode       string
	SubcategoryCode    *string
	Priority           int // Lower number wins
	Scope              Scope
	Provenance         Provenance
	Active             bool // Rules are soft-disabled, never hard-deleted
	CreatedBy          *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewRule creates a new active Rule with its pattern fingerprint computed.
func NewRule(
	appliesTo AppliesTo,
	pattern string,
	categoryCode string,
	subcategoryCode *string,
	priority int,
	scope Scope,
	provenance Provenance,
	createdBy *uuid.UUID,
) *Rule {
	now := time.Now().UTC()

	return &Rule{
		ID:                 uuid.New(),
		AppliesTo:          appliesTo,
		Pattern:            pattern,
		PatternFingerprint: PatternFingerprint(pattern),
		CategoryCode:       categoryCode,
		SubcategoryCode:    subcategoryCode,
		Priority:           priority,
		Scope:              scope.Normalize(),
		Provenance:         provenance,
		Active:             true,
		CreatedBy:          createdBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// PatternFingerprint returns the dedup hash of a rule pattern.
func PatternFingerprint(pattern string) string {
	sum := sha1.Sum([]byte(pattern))
	return hex.EncodeToString(sum[:])
}

// Confidence returns the match confidence granted by the rule's provenance.
func (r *Rule) Confidence() float64 {
	switch r.Provenance {
	case ProvenanceLearned:
		return 0.95
	case ProvenanceOps:
		return 0.90
	default:
		return 0.85
	}
}

// Subcategory returns the subcategory code or the empty string.
func (r *Rule) Subcategory() string {
	if r.SubcategoryCode == nil {
		return ""
	}
	return *r.SubcategoryCode
}

// RulePatternTest is the outcome of testing a pattern against stored facts.
type RulePatternTest struct {
	Matches    []*Fact
	MatchCount int
}
