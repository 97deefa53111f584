package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// StagingRowModel represents the staging_transactions table in the database.
type StagingRowModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BatchID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_staging_user_pending,priority:1"`
	RawTxnID       string          `gorm:"type:varchar(128)"`
	TxnDate        time.Time       `gorm:"type:date"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Direction      string          `gorm:"type:varchar(8)"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	MerchantRaw    string          `gorm:"type:varchar(255)"`
	DescriptionRaw string          `gorm:"type:text"`
	AccountRef     string          `gorm:"type:varchar(64)"`
	ParsedOK       bool            `gorm:"not null"`
	ParseError     string          `gorm:"type:text"`
	LoadAttempts   int             `gorm:"not null;default:0"`
	LoadError      string          `gorm:"type:text"`
	ProcessedAt    *time.Time      `gorm:"index:idx_staging_user_pending,priority:2"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the StagingRowModel.
func (StagingRowModel) TableName() string {
	return "staging_transactions"
}

// ToEntity converts a StagingRowModel to a domain StagingRow entity.
func (m *StagingRowModel) ToEntity() *entity.StagingRow {
	return &entity.StagingRow{
		ID:             m.ID,
		BatchID:        m.BatchID,
		UserID:         m.UserID,
		RawTxnID:       m.RawTxnID,
		TxnDate:        m.TxnDate,
		Amount:         m.Amount,
		Direction:      entity.Direction(m.Direction),
		Currency:       m.Currency,
		MerchantRaw:    m.MerchantRaw,
		DescriptionRaw: m.DescriptionRaw,
		AccountRef:     m.AccountRef,
		ParsedOK:       m.ParsedOK,
		ParseError:     m.ParseError,
		LoadAttempts:   m.LoadAttempts,
		LoadError:      m.LoadError,
		ProcessedAt:    m.ProcessedAt,
		CreatedAt:      m.CreatedAt,
	}
}

// StagingRowFromEntity creates a StagingRowModel from a domain StagingRow entity.
func StagingRowFromEntity(row *entity.StagingRow) *StagingRowModel {
	return &StagingRowModel{
		ID:             row.ID,
		BatchID:        row.BatchID,
		UserID:         row.UserID,
		RawTxnID:       row.RawTxnID,
		TxnDate:        row.TxnDate,
		Amount:         row.Amount,
		Direction:      string(row.Direction),
		Currency:       row.Currency,
		MerchantRaw:    row.MerchantRaw,
		DescriptionRaw: row.DescriptionRaw,
		AccountRef:     row.AccountRef,
		ParsedOK:       row.ParsedOK,
		ParseError:     row.ParseError,
		LoadAttempts:   row.LoadAttempts,
		LoadError:      row.LoadError,
		ProcessedAt:    row.ProcessedAt,
		CreatedAt:      row.CreatedAt,
	}
}
