// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StagingRow is a parsed but not yet canonical transaction produced by an upstream parser.
// Rows are consumed once by the loader. A row whose load keeps failing records the last
// error and is parked (processed with LoadError set) once its attempts are used up.
type StagingRow struct {
	ID             uuid.UUID
	BatchID        uuid.UUID
	UserID         uuid.UUID
	RawTxnID       string
	TxnDate        time.Time
	Amount         decimal.Decimal
	Direction      Direction
	Currency       string
	MerchantRaw    string
	DescriptionRaw string
	AccountRef     string
	ParsedOK       bool
	ParseError     string
	LoadAttempts   int
	LoadError      string
	ProcessedAt    *time.Time
	CreatedAt      time.Time
}

// NewStagingRow creates a parsed staging row.
func NewStagingRow(
	batchID uuid.UUID,
	userID uuid.UUID,
	txnDate time.Time,
	amount decimal.Decimal,
	direction Direction,
	merchantRaw string,
	descriptionRaw string,
) *StagingRow {
	return &StagingRow{
		ID:             uuid.New(),
		BatchID:        batchID,
		UserID:         userID,
		TxnDate:        txnDate,
		Amount:         amount,
		Direction:      direction,
		Currency:       DefaultCurrency,
		MerchantRaw:    merchantRaw,
		DescriptionRaw: descriptionRaw,
		ParsedOK:       true,
		CreatedAt:      time.Now().UTC(),
	}
}

// StagingStatus summarises staging and fact counts for a user.
type StagingStatus struct {
	StagingTotal   int64
	StagingPending int64
	StagingInvalid int64
	StagingFailed  int64
	Facts          int64
}
