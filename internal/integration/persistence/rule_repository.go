// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/persistence/model"
)

// ruleRepository implements the adapter.RuleRepository interface.
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new rule repository instance.
func NewRuleRepository(db *gorm.DB) adapter.RuleRepository {
	return &ruleRepository{
		db: db,
	}
}

// FindActiveForScope retrieves active rules of the scope and the global scope in match order.
func (r *ruleRepository) FindActiveForScope(ctx context.Context, scope entity.Scope) ([]*entity.Rule, error) {
	scopes := []string{string(entity.GlobalScope)}
	if !scope.IsGlobal() {
		scopes = append(scopes, string(scope))
	}

	var ruleModels []model.RuleModel
	result := r.db.WithContext(ctx).
		Where("active = ? AND scope IN ?", true, scopes).
		Order("priority ASC, created_at DESC, id ASC").
		Find(&ruleModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toRuleEntities(ruleModels), nil
}

// FindByScope retrieves every rule owned by the scope.
func (r *ruleRepository) FindByScope(ctx context.Context, scope entity.Scope) ([]*entity.Rule, error) {
	var ruleModels []model.RuleModel
	result := r.db.WithContext(ctx).
		Where("scope = ?", string(scope.Normalize())).
		Order("priority ASC, created_at DESC, id ASC").
		Find(&ruleModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toRuleEntities(ruleModels), nil
}

// FindByID retrieves a rule by its ID.
func (r *ruleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Rule, error) {
	var ruleModel model.RuleModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&ruleModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrRuleNotFound
		}
		return nil, result.Error
	}
	return ruleModel.ToEntity(), nil
}

// Upsert inserts the rule or updates the existing one with the same pattern in the scope.
func (r *ruleRepository) Upsert(ctx context.Context, rule *entity.Rule) (*entity.Rule, error) {
	ruleModel := model.RuleFromEntity(rule)
	ruleModel.Active = true

	var stored model.RuleModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "scope"}, {Name: "applies_to"}, {Name: "pattern_fingerprint"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"category_code",
				"subcategory_code",
				"priority",
				"provenance",
				"active",
				"updated_at",
			}),
		}).Create(ruleModel)
		if result.Error != nil {
			return result.Error
		}

		return tx.
			Where("scope = ? AND applies_to = ? AND pattern_fingerprint = ?",
				ruleModel.Scope, ruleModel.AppliesTo, ruleModel.PatternFingerprint).
			First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return stored.ToEntity(), nil
}

// Deactivate soft-disables a rule.
func (r *ruleRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.RuleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrRuleNotFound
	}
	return nil
}

// CountLearnedSince counts learned rules created by the actor in the scope since the given time.
func (r *ruleRepository) CountLearnedSince(ctx context.Context, actor uuid.UUID, scope entity.Scope, since time.Time) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.RuleModel{}).
		Where("provenance = ? AND created_by = ? AND scope = ? AND created_at >= ?",
			string(entity.ProvenanceLearned), actor, string(scope.Normalize()), since.UTC()).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func toRuleEntities(ruleModels []model.RuleModel) []*entity.Rule {
	rules := make([]*entity.Rule, len(ruleModels))
	for i := range ruleModels {
		rules[i] = ruleModels[i].ToEntity()
	}
	return rules
}
