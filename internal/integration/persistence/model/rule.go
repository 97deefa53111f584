package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// RuleModel represents the rules table in the database.
type RuleModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Scope              string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_rules_scope_pattern,priority:1;index:idx_rules_scope_active,priority:1"`
	AppliesTo          string     `gorm:"type:varchar(16);not null;uniqueIndex:idx_rules_scope_pattern,priority:2"`
	PatternFingerprint string     `gorm:"type:varchar(40);not null;uniqueIndex:idx_rules_scope_pattern,priority:3"`
	Pattern            string     `gorm:"type:text;not null"`
	CategoryCode       string     `gorm:"type:varchar(64);not null"`
	SubcategoryCode    *string    `gorm:"type:varchar(64)"`
	Priority           int        `gorm:"not null"`
	Provenance         string     `gorm:"type:varchar(16);not null"`
	Active             bool       `gorm:"not null;index:idx_rules_scope_active,priority:2"`
	CreatedBy          *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the RuleModel.
func (RuleModel) TableName() string {
	return "rules"
}

// ToEntity converts a RuleModel to a domain Rule entity.
func (m *RuleModel) ToEntity() *entity.Rule {
	return &entity.Rule{
		ID:                 m.ID,
		AppliesTo:          entity.AppliesTo(m.AppliesTo),
		Pattern:            m.Pattern,
		PatternFingerprint: m.PatternFingerprint,
		CategoryCode:       m.CategoryCode,
		SubcategoryCode:    m.SubcategoryCode,
		Priority:           m.Priority,
		Scope:              entity.Scope(m.Scope),
		Provenance:         entity.Provenance(m.Provenance),
		Active:             m.Active,
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// RuleFromEntity creates a RuleModel from a domain Rule entity.
func RuleFromEntity(rule *entity.Rule) *RuleModel {
	return &RuleModel{
		ID:                 rule.ID,
		Scope:              string(rule.Scope.Normalize()),
		AppliesTo:          string(rule.AppliesTo),
		PatternFingerprint: rule.PatternFingerprint,
		Pattern:            rule.Pattern,
		CategoryCode:       rule.CategoryCode,
		SubcategoryCode:    rule.SubcategoryCode,
		Priority:           rule.Priority,
		Provenance:         string(rule.Provenance),
		Active:             rule.Active,
		CreatedBy:          rule.CreatedBy,
		CreatedAt:          rule.CreatedAt,
		UpdatedAt:          rule.UpdatedAt,
	}
}
