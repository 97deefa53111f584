package valueobject

import (
	"strings"
	"unicode"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// KeywordRule maps any of its keywords to a category pair.
// Single-word keywords match whole words; phrases match as substrings of the word sequence.
type KeywordRule struct {
	CategoryCode    string
	SubcategoryCode string
	Keywords        []string
}

// FallbackPolicy classifies text that no rule matched.
// Credits never land in a spending category: they are income when the counterparty
// looks like a company and a transfer otherwise.
type FallbackPolicy struct {
	CreditCategory           string
	CreditSubcategory        string
	CreditCompanyCategory    string
	CreditCompanySubcategory string
	CompanyMarkers           []string

	DebitCategory string
	DebitKeywords []KeywordRule
}

// DefaultFallbackPolicy returns the policy used when configuration does not override it.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{
		CreditCategory:           "transfers",
		CreditSubcategory:        "p2p_transfer",
		CreditCompanyCategory:    "income",
		CreditCompanySubcategory: "salary",
		CompanyMarkers: []string{
			"technologies", "technology", "private", "limited", "pvt", "ltd",
			"inc", "corporation", "corp", "industries", "clearing", "nsec",
		},
		DebitCategory: "shopping",
		DebitKeywords: []KeywordRule{
			{CategoryCode: "dining", SubcategoryCode: "food_delivery", Keywords: []string{"zomato", "swiggy", "food delivery"}},
			{CategoryCode: "dining", SubcategoryCode: "restaurant", Keywords: []string{"restaurant", "dine", "pizza", "burger", "cafe", "coffee", "barista"}},
			{CategoryCode: "groceries", Keywords: []string{"bigbasket", "blinkit", "zepto", "dmart", "supermarket", "grocery", "kirana", "provisions"}},
			{CategoryCode: "utilities", SubcategoryCode: "electricity", Keywords: []string{"bescom", "tsspdcl", "electricity"}},
			{CategoryCode: "utilities", SubcategoryCode: "mobile_recharge", Keywords: []string{"jio", "airtel", "vodafone", "bsnl", "recharge"}},
			{CategoryCode: "utilities", SubcategoryCode: "broadband", Keywords: []string{"broadband", "jiofiber", "hathway"}},
			{CategoryCode: "auto_taxi", Keywords: []string{"uber", "ola", "rapido", "cab", "taxi"}},
			{CategoryCode: "auto_taxi", SubcategoryCode: "fuel", Keywords: []string{"fuel", "petrol", "diesel"}},
			{CategoryCode: "train", Keywords: []string{"irctc", "railways", "metro"}},
			{CategoryCode: "flight", Keywords: []string{"indigo", "vistara", "air india", "akasa", "airline"}},
			{CategoryCode: "travel", SubcategoryCode: "hotel_stay", Keywords: []string{"hotel", "resort", "lodge", "oyo", "marriott"}},
			{CategoryCode: "rent", Keywords: []string{"rent", "maintenance", "society"}},
			{CategoryCode: "health", Keywords: []string{"hospital", "clinic", "pharmacy", "medplus", "diagnostics", "gym"}},
			{CategoryCode: "investments", Keywords: []string{"mutual fund", "sip", "zerodha", "groww", "fixed deposit"}},
			{CategoryCode: "bills", SubcategoryCode: "credit_card_due", Keywords: []string{"cred", "credit card", "amex", "card bill"}},
		},
	}
}

// Classify returns the fallback category pair for text that no rule matched.
func (p FallbackPolicy) Classify(merchant, description string, direction entity.Direction) (string, *string) {
	text := merchant
	if text == "" {
		text = description
	}
	words := keywordWords(text)
	joined := " " + strings.Join(words, " ") + " "

	if direction == entity.DirectionCredit {
		for _, marker := range p.CompanyMarkers {
			if containsKeyword(joined, marker) {
				return p.CreditCompanyCategory, optional(p.CreditCompanySubcategory)
			}
		}
		return p.CreditCategory, optional(p.CreditSubcategory)
	}

	// Merchant first, then the description, so a clean merchant wins over rail noise.
	for _, candidate := range []string{merchant, description} {
		if candidate == "" {
			continue
		}
		padded := " " + strings.Join(keywordWords(candidate), " ") + " "
		for _, rule := range p.DebitKeywords {
			for _, kw := range rule.Keywords {
				if containsKeyword(padded, kw) {
					return rule.CategoryCode, optional(rule.SubcategoryCode)
				}
			}
		}
	}
	return p.DebitCategory, nil
}

func keywordWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsKeyword(padded, keyword string) bool {
	return strings.Contains(padded, " "+strings.ToLower(keyword)+" ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
