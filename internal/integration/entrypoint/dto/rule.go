package dto

import (
	"time"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// CreateRuleRequest represents the request body for rule creation.
type CreateRuleRequest struct {
	AppliesTo       string  `json:"applies_to" binding:"required,oneof=merchant description"`
	Pattern         string  `json:"pattern" binding:"required,min=1,max=255"`
	CategoryCode    string  `json:"category_code" binding:"required,min=1,max=64"`
	SubcategoryCode *string `json:"subcategory_code,omitempty" binding:"omitempty,max=64"`
	Priority        *int    `json:"priority,omitempty"`
	// Scope defaults to the caller's own scope. Only ops may write "global" or other tenants.
	Scope string `json:"scope,omitempty"`
}

// TestPatternRequest represents the request body for pattern testing.
type TestPatternRequest struct {
	Pattern   string `json:"pattern" binding:"required,min=1,max=255"`
	AppliesTo string `json:"applies_to,omitempty" binding:"omitempty,oneof=merchant description"`
	Limit     int    `json:"limit,omitempty" binding:"omitempty,min=1,max=100"`
}

// RuleResponse represents a single rule in API responses.
type RuleResponse struct {
	ID              string    `json:"id"`
	AppliesTo       string    `json:"applies_to"`
	Pattern         string    `json:"pattern"`
	CategoryCode    string    `json:"category_code"`
	SubcategoryCode *string   `json:"subcategory_code,omitempty"`
	Priority        int       `json:"priority"`
	Scope           string    `json:"scope"`
	Provenance      string    `json:"provenance"`
	Active          bool      `json:"active"`
	CreatedBy       *string   `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RuleListResponse represents the response for listing rules.
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// MatchingTransactionResponse represents a matching transaction in the response.
type MatchingTransactionResponse struct {
	ID                 string `json:"id"`
	Date               string `json:"date"`
	Amount             string `json:"amount"`
	Direction          string `json:"direction"`
	Description        string `json:"description"`
	NormalizedMerchant string `json:"normalized_merchant"`
}

// TestPatternResponse represents the response for pattern testing.
type TestPatternResponse struct {
	MatchingTransactions []MatchingTransactionResponse `json:"matching_transactions"`
	MatchCount           int                           `json:"match_count"`
}

// ToRuleResponse converts a domain Rule entity to a RuleResponse DTO.
func ToRuleResponse(r *entity.Rule) RuleResponse {
	response := RuleResponse{
		ID:              r.ID.String(),
		AppliesTo:       string(r.AppliesTo),
		Pattern:         r.Pattern,
		CategoryCode:    r.CategoryCode,
		SubcategoryCode: stringOrNil(r.SubcategoryCode),
		Priority:        r.Priority,
		Scope:           string(r.Scope),
		Provenance:      string(r.Provenance),
		Active:          r.Active,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.CreatedBy != nil {
		id := r.CreatedBy.String()
		response.CreatedBy = &id
	}
	return response
}

// ToRuleListResponse converts domain rules to a RuleListResponse DTO.
func ToRuleListResponse(rules []*entity.Rule) RuleListResponse {
	response := RuleListResponse{Rules: make([]RuleResponse, 0, len(rules))}
	for _, r := range rules {
		response.Rules = append(response.Rules, ToRuleResponse(r))
	}
	return response
}

// ToTestPatternResponse converts a pattern test result to a TestPatternResponse DTO.
func ToTestPatternResponse(result *entity.RulePatternTest) TestPatternResponse {
	response := TestPatternResponse{
		MatchingTransactions: make([]MatchingTransactionResponse, 0, len(result.Matches)),
		MatchCount:           result.MatchCount,
	}
	for _, f := range result.Matches {
		response.MatchingTransactions = append(response.MatchingTransactions, MatchingTransactionResponse{
			ID:                 f.ID.String(),
			Date:               f.Date.Format("2006-01-02"),
			Amount:             f.Amount.StringFixed(2),
			Direction:          string(f.Direction),
			Description:        f.Description,
			NormalizedMerchant: f.NormalizedMerchant,
		})
	}
	return response
}
