package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// FactModel represents the transactions_fact table in the database.
type FactModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fact_user_fingerprint,priority:1;index:idx_fact_user_date,priority:1"`
	ContentFingerprint string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_fact_user_fingerprint,priority:2"`
	BatchID            uuid.UUID       `gorm:"type:uuid;not null"`
	StagingID          *uuid.UUID      `gorm:"type:uuid"`
	TxnDate            time.Time       `gorm:"type:date;not null;index:idx_fact_user_date,priority:2"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Direction          string          `gorm:"type:varchar(8);not null"`
	Currency           string          `gorm:"type:varchar(3);not null"`
	Description        string          `gorm:"type:text"`
	NormalizedMerchant string          `gorm:"type:varchar(255);index"`
	AccountRef         string          `gorm:"type:varchar(64)"`
	ExternalRef        string          `gorm:"type:varchar(128)"`
	CreatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the FactModel.
func (FactModel) TableName() string {
	return "transactions_fact"
}

// ToEntity converts a FactModel to a domain Fact entity.
func (m *FactModel) ToEntity() *entity.Fact {
	return &entity.Fact{
		ID:                 m.ID,
		UserID:             m.UserID,
		BatchID:            m.BatchID,
		StagingID:          m.StagingID,
		Date:               m.TxnDate,
		Amount:             m.Amount,
		Direction:          entity.Direction(m.Direction),
		Currency:           m.Currency,
		Description:        m.Description,
		NormalizedMerchant: m.NormalizedMerchant,
		AccountReference:   m.AccountRef,
		ExternalReference:  m.ExternalRef,
		ContentFingerprint: m.ContentFingerprint,
		CreatedAt:          m.CreatedAt,
	}
}

// FactFromEntity creates a FactModel from a domain Fact entity.
func FactFromEntity(fact *entity.Fact) *FactModel {
	return &FactModel{
		ID:                 fact.ID,
		UserID:             fact.UserID,
		ContentFingerprint: fact.ContentFingerprint,
		BatchID:            fact.BatchID,
		StagingID:          fact.StagingID,
		TxnDate:            fact.Date,
		Amount:             fact.Amount,
		Direction:          string(fact.Direction),
		Currency:           fact.Currency,
		Description:        fact.Description,
		NormalizedMerchant: fact.NormalizedMerchant,
		AccountRef:         fact.AccountReference,
		ExternalRef:        fact.ExternalReference,
		CreatedAt:          fact.CreatedAt,
	}
}

// EnrichmentModel represents the transaction_enrichment table in the database.
type EnrichmentModel struct {
	FactID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MatchedRuleID   *uuid.UUID `gorm:"type:uuid;index"`
	CategoryCode    string     `gorm:"type:varchar(64);not null;index"`
	SubcategoryCode *string    `gorm:"type:varchar(64)"`
	Bucket          string     `gorm:"type:varchar(16);not null"`
	Confidence      float64    `gorm:"type:decimal(4,3);not null"`
	Source          string     `gorm:"type:varchar(16);not null"`
	ComputedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for the EnrichmentModel.
func (EnrichmentModel) TableName() string {
	return "transaction_enrichment"
}

// ToEntity converts an EnrichmentModel to a domain Enrichment entity.
func (m *EnrichmentModel) ToEntity() *entity.Enrichment {
	return &entity.Enrichment{
		FactID:          m.FactID,
		MatchedRuleID:   m.MatchedRuleID,
		CategoryCode:    m.CategoryCode,
		SubcategoryCode: m.SubcategoryCode,
		Bucket:          entity.Bucket(m.Bucket),
		Confidence:      m.Confidence,
		Source:          entity.EnrichmentSource(m.Source),
		ComputedAt:      m.ComputedAt,
	}
}

// EnrichmentFromEntity creates an EnrichmentModel from a domain Enrichment entity.
func EnrichmentFromEntity(enrichment *entity.Enrichment) *EnrichmentModel {
	return &EnrichmentModel{
		FactID:          enrichment.FactID,
		MatchedRuleID:   enrichment.MatchedRuleID,
		CategoryCode:    enrichment.CategoryCode,
		SubcategoryCode: enrichment.SubcategoryCode,
		Bucket:          string(enrichment.Bucket),
		Confidence:      enrichment.Confidence,
		Source:          string(enrichment.Source),
		ComputedAt:      enrichment.ComputedAt,
	}
}
