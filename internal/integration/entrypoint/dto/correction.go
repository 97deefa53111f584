package dto

import (
	"time"

	"github.com/finance-tracker/categorizer/internal/application/usecase/rule"
	"github.com/finance-tracker/categorizer/internal/application/usecase/transaction"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// CorrectClassificationRequest represents the request body for correcting a transaction's category.
type CorrectClassificationRequest struct {
	CategoryCode    string  `json:"category_code" binding:"required,min=1,max=64"`
	SubcategoryCode *string `json:"subcategory_code,omitempty" binding:"omitempty,max=64"`
	SkipLearning    bool    `json:"skip_learning,omitempty"`
}

// RecordCorrectionRequest represents the request body for learning from text without a stored transaction.
type RecordCorrectionRequest struct {
	Merchant        string  `json:"merchant"`
	Description     string  `json:"description"`
	CategoryCode    string  `json:"category_code" binding:"required,min=1,max=64"`
	SubcategoryCode *string `json:"subcategory_code,omitempty" binding:"omitempty,max=64"`
}

// EnrichmentResponse represents a transaction's classification snapshot.
type EnrichmentResponse struct {
	TransactionID   string    `json:"transaction_id"`
	CategoryCode    string    `json:"category_code"`
	SubcategoryCode *string   `json:"subcategory_code,omitempty"`
	Bucket          string    `json:"bucket,omitempty"`
	Confidence      float64   `json:"confidence"`
	Source          string    `json:"source"`
	MatchedRuleID   *string   `json:"matched_rule_id,omitempty"`
	ComputedAt      time.Time `json:"computed_at"`
}

// CorrectClassificationResponse represents the response for a classification correction.
type CorrectClassificationResponse struct {
	Enrichment    EnrichmentResponse `json:"enrichment"`
	LearnedRuleID *string            `json:"learned_rule_id,omitempty"`
	LearnOutcome  string             `json:"learn_outcome"`
}

// RecordCorrectionResponse represents the response for a learning request.
type RecordCorrectionResponse struct {
	RuleID  *string `json:"rule_id,omitempty"`
	Outcome string  `json:"outcome"`
}

// ToEnrichmentResponse converts a domain Enrichment entity to an EnrichmentResponse DTO.
func ToEnrichmentResponse(e *entity.Enrichment) EnrichmentResponse {
	response := EnrichmentResponse{
		TransactionID:   e.FactID.String(),
		CategoryCode:    e.CategoryCode,
		SubcategoryCode: stringOrNil(e.SubcategoryCode),
		Bucket:          string(e.Bucket),
		Confidence:      e.Confidence,
		Source:          string(e.Source),
		ComputedAt:      e.ComputedAt,
	}
	if e.MatchedRuleID != nil {
		id := e.MatchedRuleID.String()
		response.MatchedRuleID = &id
	}
	return response
}

// ToCorrectClassificationResponse converts a correction output to its response DTO.
func ToCorrectClassificationResponse(output *transaction.CorrectClassificationOutput) CorrectClassificationResponse {
	response := CorrectClassificationResponse{
		Enrichment:   ToEnrichmentResponse(output.Enrichment),
		LearnOutcome: output.LearnOutcome,
	}
	if output.LearnedRuleID != nil {
		id := output.LearnedRuleID.String()
		response.LearnedRuleID = &id
	}
	return response
}

// ToRecordCorrectionResponse converts a learning output to its response DTO.
func ToRecordCorrectionResponse(output *rule.RecordCorrectionOutput) RecordCorrectionResponse {
	response := RecordCorrectionResponse{Outcome: output.Outcome}
	if output.RuleID != nil {
		id := output.RuleID.String()
		response.RuleID = &id
	}
	return response
}
