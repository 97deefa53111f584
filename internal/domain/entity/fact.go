// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the money flow of a transaction relative to the account holder.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// IsValid reports whether the direction is debit or credit.
func (d Direction) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// DefaultCurrency is applied to rows that arrive without a currency.
const DefaultCurrency = "INR"

// Fact is the canonical transaction record.
// ContentFingerprint is unique per user and is the single source of dedup truth.
type Fact struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	BatchID            uuid.UUID
	StagingID          *uuid.UUID
	Date               time.Time
	Amount             decimal.Decimal // Always a non-negative magnitude
	Direction          Direction
	Currency           string
	Description        string
	NormalizedMerchant string
	AccountReference   string
	ExternalReference  string
	ContentFingerprint string
	CreatedAt          time.Time
}

// NewFact creates a Fact from a staging row and its derived fields.
func NewFact(row *StagingRow, normalizedMerchant, fingerprint string) *Fact {
	currency := row.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	stagingID := row.ID

	return &Fact{
		ID:                 uuid.New(),
		UserID:             row.UserID,
		BatchID:            row.BatchID,
		StagingID:          &stagingID,
		Date:               row.TxnDate,
		Amount:             row.Amount.Abs(),
		Direction:          row.Direction,
		Currency:           currency,
		Description:        row.DescriptionRaw,
		NormalizedMerchant: normalizedMerchant,
		AccountReference:   row.AccountRef,
		ExternalReference:  row.RawTxnID,
		ContentFingerprint: fingerprint,
		CreatedAt:          time.Now().UTC(),
	}
}

// FactWithEnrichment pairs a fact with its classification snapshot.
type FactWithEnrichment struct {
	Fact       *Fact
	Enrichment *Enrichment
}

// LoadedFact is everything a loader commits for one staging row.
// Category and Subcategory are inserted only when missing; Subcategory is nil when the
// classification has none.
type LoadedFact struct {
	Fact        *Fact
	Enrichment  *Enrichment
	Category    *Category
	Subcategory *Subcategory
	StagingID   uuid.UUID
}
