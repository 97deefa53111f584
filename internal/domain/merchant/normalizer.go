// Package merchant canonicalizes merchant names and extracts merchants from payment-rail descriptions.
// Everything in this package is a pure function; fingerprints and rule matching depend on that.
package merchant

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	trailingHandle  = regexp.MustCompile(`@\S*$`)
	nonAlnum        = regexp.MustCompile(`[^A-Z0-9]+`)
	railPrefix      = regexp.MustCompile(`^((UPI|PAYTM|PHONEPE|GPAY)\s+)+`)
	trailingNumbers = regexp.MustCompile(`(\s+\d+)+$`)
)

// unknownMarkers are merchant values upstream parsers emit when they have nothing.
var unknownMarkers = map[string]struct{}{
	"":        {},
	"unknown": {},
	"nan":     {},
	"none":    {},
	"null":    {},
}

// Normalize returns the comparison form of a merchant name or description:
// diacritics folded, uppercase, punctuation removed, whitespace collapsed,
// wallet/app prefixes and trailing handles or numeric suffixes stripped.
// Normalize(Normalize(s)) == Normalize(s), so stored merchants can be classified again.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(foldDiacritics(), s)
	if err != nil {
		folded = s
	}

	out := strings.ToUpper(strings.TrimSpace(folded))
	out = trailingHandle.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, "'", "")
	out = nonAlnum.ReplaceAllString(out, " ")
	out = strings.Join(strings.Fields(out), " ")

	if stripped := railPrefix.ReplaceAllString(out, ""); stripped != "" {
		out = stripped
	}
	if stripped := trailingNumbers.ReplaceAllString(out, ""); stripped != "" {
		out = stripped
	}
	return out
}

// IsUnknown reports whether a raw merchant value carries no information.
func IsUnknown(raw string) bool {
	_, ok := unknownMarkers[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Resolve picks the merchant for a transaction and returns its normalized form.
// An informative raw merchant wins; otherwise the merchant is extracted from the
// description, and when that fails the description itself is normalized.
func Resolve(merchantRaw, description string) string {
	name := merchantRaw
	if IsUnknown(name) {
		name, _ = Extract(description)
	}
	if name == "" {
		name = description
	}
	return Normalize(name)
}

func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
