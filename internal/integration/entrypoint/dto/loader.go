package dto

import (
	"github.com/finance-tracker/categorizer/internal/application/usecase/loader"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// StageRowRequest represents one raw transaction produced by an upstream parser.
type StageRowRequest struct {
	RawTxnID    string `json:"raw_txn_id,omitempty"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Direction   string `json:"direction,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Merchant    string `json:"merchant,omitempty"`
	Description string `json:"description,omitempty"`
	AccountRef  string `json:"account_ref,omitempty"`
}

// StageRowsRequest represents the request body for submitting a staging batch.
type StageRowsRequest struct {
	Rows []StageRowRequest `json:"rows" binding:"required,min=1"`
	// Load runs the loader for the caller right after staging.
	Load bool `json:"load,omitempty"`
}

// ReenrichRequest represents the request body for a re-enrichment pass.
type ReenrichRequest struct {
	UserID    *string `json:"user_id,omitempty" binding:"omitempty,uuid"`
	BatchSize int     `json:"batch_size,omitempty" binding:"omitempty,min=1,max=5000"`
}

// LoadResponse represents the outcome of a load run.
type LoadResponse struct {
	Pending   int `json:"pending"`
	Inserted  int `json:"inserted"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
	Parked    int `json:"parked"`
}

// StageRowsResponse represents the response for a staging batch.
type StageRowsResponse struct {
	BatchID  string        `json:"batch_id"`
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Load     *LoadResponse `json:"load,omitempty"`
}

// LoadStatusResponse represents staging and fact counts for the caller.
type LoadStatusResponse struct {
	StagingTotal   int64 `json:"staging_total"`
	StagingPending int64 `json:"staging_pending"`
	StagingInvalid int64 `json:"staging_invalid"`
	StagingFailed  int64 `json:"staging_failed"`
	Facts          int64 `json:"facts"`
}

// ReenrichResponse represents the outcome of a re-enrichment pass.
type ReenrichResponse struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Manual  int `json:"manual"`
	Failed  int `json:"failed"`
}

// ToStageRowsInput converts request rows to use case input rows.
func ToStageRowsInput(rows []StageRowRequest) []loader.StageRowInput {
	result := make([]loader.StageRowInput, len(rows))
	for i, r := range rows {
		result[i] = loader.StageRowInput{
			RawTxnID:    r.RawTxnID,
			Date:        r.Date,
			Amount:      r.Amount,
			Direction:   r.Direction,
			Currency:    r.Currency,
			Merchant:    r.Merchant,
			Description: r.Description,
			AccountRef:  r.AccountRef,
		}
	}
	return result
}

// ToLoadResponse converts a load output to a LoadResponse DTO.
func ToLoadResponse(output *loader.LoadStagingOutput) LoadResponse {
	return LoadResponse{
		Pending:   output.Pending,
		Inserted:  output.Inserted,
		Duplicate: output.Duplicate,
		Failed:    output.Failed,
		Parked:    output.Parked,
	}
}

// ToStageRowsResponse converts a staging output to a StageRowsResponse DTO.
func ToStageRowsResponse(output *loader.StageRowsOutput) StageRowsResponse {
	return StageRowsResponse{
		BatchID:  output.BatchID.String(),
		Accepted: output.Accepted,
		Rejected: output.Rejected,
	}
}

// ToLoadStatusResponse converts a staging status to a LoadStatusResponse DTO.
func ToLoadStatusResponse(status *entity.StagingStatus) LoadStatusResponse {
	return LoadStatusResponse{
		StagingTotal:   status.StagingTotal,
		StagingPending: status.StagingPending,
		StagingInvalid: status.StagingInvalid,
		StagingFailed:  status.StagingFailed,
		Facts:          status.Facts,
	}
}

// ToReenrichResponse converts a re-enrichment output to a ReenrichResponse DTO.
func ToReenrichResponse(output *loader.ReenrichOutput) ReenrichResponse {
	return ReenrichResponse{
		Scanned: output.Scanned,
		Updated: output.Updated,
		Manual:  output.Manual,
		Failed:  output.Failed,
	}
}
