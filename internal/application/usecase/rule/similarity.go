package rule

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// sequenceSimilarity is 2*LCS/(len(a)+len(b)): the levenshtein ratio with substitutions
// costing one insertion plus one deletion.
func sequenceSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

// wordOverlap is the Jaccard index of the word sets of a and b.
func wordOverlap(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	union := len(wa) + len(wb) - shared
	return float64(shared) / float64(union)
}

// Similarity scores a normalized merchant against the literal token bag of a pattern.
// The word-overlap score is damped by overlapWeight before competing with sequence similarity.
func Similarity(merchant, tokenBag string, overlapWeight float64) float64 {
	merchant = strings.ToUpper(merchant)
	tokenBag = strings.ToUpper(tokenBag)
	return max(sequenceSimilarity(merchant, tokenBag), wordOverlap(merchant, tokenBag)*overlapWeight)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
