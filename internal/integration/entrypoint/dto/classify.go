package dto

import (
	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
)

// ClassifyRequest represents the request body for classifying transaction text.
type ClassifyRequest struct {
	Merchant    string `json:"merchant"`
	Description string `json:"description"`
	Direction   string `json:"direction" binding:"required,oneof=debit credit"`
}

// ClassifyResponse represents a classification result.
type ClassifyResponse struct {
	CategoryCode       string  `json:"category_code"`
	SubcategoryCode    *string `json:"subcategory_code,omitempty"`
	Confidence         float64 `json:"confidence"`
	MatchedRuleID      *string `json:"matched_rule_id,omitempty"`
	Source             string  `json:"source"`
	MatchKind          string  `json:"match_kind,omitempty"`
	NormalizedMerchant string  `json:"normalized_merchant,omitempty"`
	TimedOut           bool    `json:"timed_out,omitempty"`
}

// ToClassifyResponse converts a classify output to a ClassifyResponse DTO.
func ToClassifyResponse(output *rule.ClassifyOutput) ClassifyResponse {
	c := output.Classification
	response := ClassifyResponse{
		CategoryCode:       c.CategoryCode,
		SubcategoryCode:    stringOrNil(c.SubcategoryCode),
		Confidence:         c.Confidence,
		Source:             string(c.Source),
		NormalizedMerchant: c.NormalizedMerchant,
		TimedOut:           output.TimedOut,
	}
	if c.MatchedRuleID != nil {
		id := c.MatchedRuleID.String()
		response.MatchedRuleID = &id
	}
	if output.Match != nil {
		response.MatchKind = string(output.Match.Kind)
	}
	return response
}
