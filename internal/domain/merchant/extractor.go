package merchant

import (
	"regexp"
	"strings"
	"unicode"
)

type extractionRule struct {
	name    string
	extract func(desc, upper string) string
}

// minMerchantLength is exclusive: extracted names need more characters than this.
const minMerchantLength = 2

var (
	upiName         = regexp.MustCompile(`(?i)UPI-([A-Z][A-Z\s]+?)(?:-|@|$)`)
	revUPIHandle    = regexp.MustCompile(`(?i)-([A-Z][A-Z0-9._]+)@`)
	billpayPayee    = regexp.MustCompile(`(?i)BILLPAY\s+(?:DR|CR)-([A-Z0-9]+)`)
	dashDigits      = regexp.MustCompile(`-\d+$`)
	spaceDigits     = regexp.MustCompile(`\s+\d+$`)
	digitsSuffix    = regexp.MustCompile(`\d+$`)
	handleSuffix    = regexp.MustCompile(`@.*$`)
	billdkPrefix    = regexp.MustCompile(`(?i)^BILLDK`)
	issuerSuffix    = regexp.MustCompile(`(?i)(HDFC|CARD).*$`)
	billdSuffix     = regexp.MustCompile(`(?i)BILLD[A-Z]+$`)
	hdfcSuffix      = regexp.MustCompile(`(?i)HDFC.*$`)
	cardSuffix      = regexp.MustCompile(`(?i)CARD.*$`)
	razorpayPrefix  = regexp.MustCompile(`(?i)^RAZPDSP`)
	nonLetters      = regexp.MustCompile(`[^A-Za-z]`)
	billpayBankCode = map[string]struct{}{"HDFCCS": {}, "HDFC4W": {}, "ICICI": {}, "SBI": {}, "AXIS": {}, "KOTAK": {}}
	impsBankCode    = map[string]struct{}{"UTIB": {}, "KKBK": {}, "ICIC": {}, "HDFC": {}, "SBIN": {}}
)

// rules are tried in order; the first non-empty extraction wins.
var rules = []extractionRule{
	{"upi", extractUPI},
	{"rev_upi", extractRevUPI},
	{"ach", extractACH},
	{"billpay", extractBillpay},
	{"neft", extractNEFT},
	{"card_settlement", extractCardSettlement},
	{"razorpay", extractRazorpay},
	{"nwd", extractNWD},
	{"imps", extractIMPS},
	{"generic", extractGeneric},
	{"upi_fallback", extractUPIFallback},
}

// Extract pulls a merchant name out of a payment-rail description.
// It never fails; ok is false when no rule produced a usable name.
func Extract(description string) (name string, ok bool) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return "", false
	}
	upper := strings.ToUpper(desc)

	for _, r := range rules {
		if m := r.extract(desc, upper); m != "" {
			return m, true
		}
	}
	return "", false
}

func usable(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > minMerchantLength {
		return s
	}
	return ""
}

// UPI-MERCHANT NAME-handle@bank
func extractUPI(desc, _ string) string {
	m := upiName.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return usable(dashDigits.ReplaceAllString(strings.TrimSpace(m[1]), ""))
}

// REV-UPI-<ref>-NAME.SURNAME@bank-...
func extractRevUPI(desc, upper string) string {
	if !strings.HasPrefix(upper, "REV-UPI-") {
		return ""
	}
	m := revUPIHandle.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	name, _, _ := strings.Cut(m[1], ".")
	return usable(digitsSuffix.ReplaceAllString(name, ""))
}

// ACH D- PAYEE-ref
func extractACH(desc, upper string) string {
	if !strings.HasPrefix(upper, "ACH D-") && !strings.HasPrefix(upper, "ACH CR-") {
		return ""
	}
	parts := strings.SplitN(desc, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	name := dashDigits.ReplaceAllString(strings.TrimSpace(parts[1]), "")
	return usable(spaceDigits.ReplaceAllString(name, ""))
}

// IB BILLPAY DR-PAYEE-ref; bank codes are not merchants.
func extractBillpay(desc, upper string) string {
	if !strings.Contains(upper, "BILLPAY") {
		return ""
	}
	m := billpayPayee.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	if _, isBank := billpayBankCode[strings.ToUpper(m[1])]; isBank {
		return ""
	}
	return usable(m[1])
}

// NEFT CR-IFSC-PAYER NAME-...; the first three words of the payer.
func extractNEFT(desc, upper string) string {
	if !strings.HasPrefix(upper, "NEFT ") {
		return ""
	}
	parts := strings.Split(desc, "-")
	if len(parts) < 3 {
		return ""
	}
	words := strings.Fields(parts[2])
	if len(words) > 3 {
		words = words[:3]
	}
	return usable(strings.Join(words, " "))
}

// REFCODE/BILLDKMERCHANT or REFCODE/MERCHANTHDFCCARD
func extractCardSettlement(desc, upper string) string {
	if !strings.Contains(desc, "/") || (!strings.Contains(upper, "BILLD") && !strings.Contains(upper, "HDFC")) {
		return ""
	}
	parts := strings.Split(desc, "/")
	name := strings.TrimSpace(parts[1])

	if strings.Contains(strings.ToUpper(name), "BILLDK") && len(name) > 8 {
		name = strings.TrimSpace(billdkPrefix.ReplaceAllString(name, ""))
		name = strings.TrimSpace(issuerSuffix.ReplaceAllString(name, ""))
		if m := usable(name); m != "" {
			return m
		}
	}
	name = strings.TrimSpace(billdSuffix.ReplaceAllString(name, ""))
	name = strings.TrimSpace(hdfcSuffix.ReplaceAllString(name, ""))
	name = strings.TrimSpace(cardSuffix.ReplaceAllString(name, ""))
	return usable(name)
}

// REFCODE/RAZPDSPMERCHANT
func extractRazorpay(desc, upper string) string {
	if !strings.Contains(desc, "/") || !strings.Contains(upper, "RAZPDSP") {
		return ""
	}
	parts := strings.Split(desc, "/")
	return usable(razorpayPrefix.ReplaceAllString(strings.TrimSpace(parts[1]), ""))
}

// NWD-card-terminal-LOCATION
func extractNWD(desc, upper string) string {
	if !strings.HasPrefix(upper, "NWD-") {
		return ""
	}
	parts := strings.Split(desc, "-")
	if len(parts) < 3 {
		return ""
	}
	name := strings.TrimSpace(parts[len(parts)-1])
	if isDigits(name) {
		return ""
	}
	return usable(name)
}

// IMPS-ref-PAYEE-bank-...
func extractIMPS(desc, upper string) string {
	if !strings.HasPrefix(upper, "IMPS-") {
		return ""
	}
	parts := strings.Split(desc, "-")
	if len(parts) < 3 {
		return ""
	}
	name := strings.TrimSpace(parts[2])
	if _, isBank := impsBankCode[strings.ToUpper(name)]; isBank {
		return ""
	}
	return usable(name)
}

// First capitalized words after the leading transaction-type token.
// Words carrying digits are card numbers or references and are skipped.
func extractGeneric(desc, _ string) string {
	words := strings.Fields(desc)
	if len(words) <= 2 {
		return ""
	}
	end := min(len(words), 5)

	var parts []string
	for _, w := range words[1:end] {
		if strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			continue
		}
		clean := nonLetters.ReplaceAllString(w, "")
		if len(clean) < 2 || !unicode.IsUpper(rune(clean[0])) {
			continue
		}
		parts = append(parts, clean)
		if m := usable(strings.Join(parts, " ")); m != "" {
			return m
		}
	}
	return ""
}

// UPI-whatever-...: the segment after the rail marker, minus handle and digits.
func extractUPIFallback(desc, upper string) string {
	if !strings.HasPrefix(upper, "UPI-") {
		return ""
	}
	parts := strings.SplitN(desc, "-", 3)
	if len(parts) < 2 {
		return ""
	}
	name := handleSuffix.ReplaceAllString(parts[1], "")
	return usable(digitsSuffix.ReplaceAllString(strings.TrimSpace(name), ""))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
