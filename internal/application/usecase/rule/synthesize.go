package rule

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	"github.com/finance-tracker/categorizer/internal/domain/merchant"
)

const (
	minMerchantPatternLength = 3
	minDescriptionTokens     = 2
	maxDescriptionTokens     = 3
	minDescriptionTokenLen   = 2
)

// railStopwords are payment-rail boilerplate that would make a description pattern overmatch.
var railStopwords = map[string]struct{}{
	"UPI": {}, "IMPS": {}, "NEFT": {}, "RTGS": {}, "ACH": {}, "NACH": {}, "POS": {}, "ATM": {},
	"TXN": {}, "TRANSACTION": {}, "REF": {}, "UTR": {}, "RRN": {}, "PAYMENT": {}, "PAY": {},
	"CARD": {}, "BILL": {}, "DR": {}, "CR": {}, "DEBIT": {}, "CREDIT": {}, "TO": {}, "FROM": {},
	"VIA": {}, "REV": {}, "IB": {}, "BILLPAY": {},
}

// SynthesizedPattern is a pattern derived from a correction.
type SynthesizedPattern struct {
	AppliesTo entity.AppliesTo
	Pattern   string
}

// Synthesize derives a rule pattern from corrected transaction text.
// A merchant pattern is preferred; the description is used only when the merchant is
// unusable. ok is false when neither yields a pattern strong enough to keep.
func Synthesize(merchantText, description string) (SynthesizedPattern, bool) {
	if p, ok := merchantPattern(merchantText); ok {
		return SynthesizedPattern{AppliesTo: entity.AppliesToMerchant, Pattern: p}, true
	}
	if p, ok := descriptionPattern(description); ok {
		return SynthesizedPattern{AppliesTo: entity.AppliesToDescription, Pattern: p}, true
	}
	return SynthesizedPattern{}, false
}

// merchantPattern turns "SHOBA ENT" into `(?i)\bSHOBA.*ENT\b`.
func merchantPattern(raw string) (string, bool) {
	if merchant.IsUnknown(raw) {
		return "", false
	}
	normalized := merchant.Normalize(raw)
	if len(normalized) < minMerchantPatternLength {
		return "", false
	}

	tokens := strings.Fields(normalized)
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return caseInsensitiveFlag + `\b` + strings.Join(quoted, ".*") + `\b`, true
}

// descriptionPattern keeps the first strong tokens of the description:
// no rail stopwords, no reference-like tokens carrying digits.
func descriptionPattern(description string) (string, bool) {
	var tokens []string
	for _, t := range strings.Fields(merchant.Normalize(description)) {
		if len(t) < minDescriptionTokenLen {
			continue
		}
		if _, stop := railStopwords[t]; stop {
			continue
		}
		if strings.IndexFunc(t, unicode.IsDigit) >= 0 {
			continue
		}
		tokens = append(tokens, regexp.QuoteMeta(t))
		if len(tokens) == maxDescriptionTokens {
			break
		}
	}
	if len(tokens) < minDescriptionTokens {
		return "", false
	}
	return caseInsensitiveFlag + `\b` + strings.Join(tokens, `\b.*\b`) + `\b`, true
}
