// Package valueobject contains domain value objects for the categorization engine.
package valueobject

// MatchingConfig contains the configuration for rule matching.
type MatchingConfig struct {
	// Fuzzy acceptance: a candidate must score strictly above the threshold
	FuzzyThreshold float64 // 0.75

	// Word-overlap (Jaccard) scores are damped before competing with sequence similarity
	WordOverlapWeight float64 // 0.9

	// Merchants shorter than this are never fuzzy matched
	FuzzyMinMerchantLength int // 3

	// Confidence reported when no rule matched and the fallback policy decided
	FallbackConfidence float64 // 0.50

	// Upper bound on accepted pattern text
	MaxPatternLength int // 512
}

// DefaultMatchingConfig returns the default matching configuration.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		FuzzyThreshold:         0.75,
		WordOverlapWeight:      0.9,
		FuzzyMinMerchantLength: 3,
		FallbackConfidence:     0.50,
		MaxPatternLength:       512,
	}
}

// AcceptsFuzzy reports whether a similarity score clears the fuzzy threshold.
func (c MatchingConfig) AcceptsFuzzy(score float64) bool {
	return score > c.FuzzyThreshold
}
