package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/persistence/model"
)

const defaultFactListLimit = 500

// factRepository implements the adapter.FactRepository interface.
type factRepository struct {
	db *gorm.DB
}

// NewFactRepository creates a new fact repository instance.
func NewFactRepository(db *gorm.DB) adapter.FactRepository {
	return &factRepository{
		db: db,
	}
}

// ExistsByFingerprint checks whether the user already has a fact with the fingerprint.
func (r *factRepository) ExistsByFingerprint(ctx context.Context, userID uuid.UUID, fingerprint string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.FactModel{}).
		Where("user_id = ? AND content_fingerprint = ?", userID, fingerprint).
		Limit(1).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// InsertLoaded commits one loaded staging row atomically.
func (r *factRepository) InsertLoaded(ctx context.Context, loaded *entity.LoadedFact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureReferenceRows(tx, loaded); err != nil {
			return err
		}

		if err := tx.Create(model.FactFromEntity(loaded.Fact)).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerror.ErrDuplicateFact
			}
			return err
		}

		if err := tx.Create(model.EnrichmentFromEntity(loaded.Enrichment)).Error; err != nil {
			return err
		}

		if loaded.StagingID != uuid.Nil {
			return markProcessed(tx, []uuid.UUID{loaded.StagingID})
		}
		return nil
	})
}

// FindByID retrieves a user's fact with its enrichment.
func (r *factRepository) FindByID(ctx context.Context, userID, factID uuid.UUID) (*entity.FactWithEnrichment, error) {
	var factModel model.FactModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", factID, userID).
		First(&factModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrFactNotFound
		}
		return nil, result.Error
	}

	items, err := r.withEnrichments(ctx, []model.FactModel{factModel})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// List retrieves facts with enrichments in ID order after the cursor.
func (r *factRepository) List(ctx context.Context, filter adapter.FactFilter) ([]*entity.FactWithEnrichment, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFactListLimit
	}

	query := r.db.WithContext(ctx).Model(&model.FactModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.AfterID != nil {
		query = query.Where("id > ?", *filter.AfterID)
	}

	var factModels []model.FactModel
	if err := query.Order("id ASC").Limit(limit).Find(&factModels).Error; err != nil {
		return nil, err
	}
	return r.withEnrichments(ctx, factModels)
}

// FindRecentByUser retrieves a user's most recent facts.
func (r *factRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Fact, error) {
	var factModels []model.FactModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("txn_date DESC, created_at DESC").
		Limit(limit).
		Find(&factModels)
	if result.Error != nil {
		return nil, result.Error
	}

	facts := make([]*entity.Fact, len(factModels))
	for i := range factModels {
		facts[i] = factModels[i].ToEntity()
	}
	return facts, nil
}

// ReplaceEnrichments overwrites enrichments in one transaction. A manual enrichment is only
// replaced by another manual one.
func (r *factRepository) ReplaceEnrichments(ctx context.Context, replacements []*entity.LoadedFact) (int, error) {
	updated := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated = 0
		for _, replacement := range replacements {
			if !replacement.Enrichment.IsManual() {
				var current model.EnrichmentModel
				err := tx.Where("fact_id = ?", replacement.Fact.ID).First(&current).Error
				switch {
				case err == nil && current.Source == string(entity.EnrichmentSourceManual):
					continue
				case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
					return err
				}
			}

			if err := ensureReferenceRows(tx, replacement); err != nil {
				return err
			}

			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "fact_id"}},
				UpdateAll: true,
			}).Create(model.EnrichmentFromEntity(replacement.Enrichment))
			if result.Error != nil {
				return result.Error
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// ensureReferenceRows creates the category pair of an enrichment when missing and aligns the
// enrichment with the stored rows: the bucket comes from the category, and a subcategory
// stored under a different category is dropped.
func ensureReferenceRows(tx *gorm.DB, loaded *entity.LoadedFact) error {
	if loaded.Category == nil {
		return nil
	}
	category, err := ensureCategory(tx, loaded.Category)
	if err != nil {
		return err
	}
	loaded.Enrichment.Bucket = category.Bucket

	if loaded.Subcategory == nil {
		loaded.Enrichment.SubcategoryCode = nil
		return nil
	}
	subcategory, err := ensureSubcategory(tx, loaded.Subcategory)
	if err != nil {
		return err
	}
	if subcategory.CategoryCode != category.Code {
		loaded.Enrichment.SubcategoryCode = nil
		return nil
	}
	code := subcategory.Code
	loaded.Enrichment.SubcategoryCode = &code
	return nil
}

func (r *factRepository) withEnrichments(ctx context.Context, factModels []model.FactModel) ([]*entity.FactWithEnrichment, error) {
	if len(factModels) == 0 {
		return []*entity.FactWithEnrichment{}, nil
	}

	ids := make([]uuid.UUID, len(factModels))
	for i := range factModels {
		ids[i] = factModels[i].ID
	}

	var enrichmentModels []model.EnrichmentModel
	if err := r.db.WithContext(ctx).Where("fact_id IN ?", ids).Find(&enrichmentModels).Error; err != nil {
		return nil, err
	}
	byFact := make(map[uuid.UUID]*entity.Enrichment, len(enrichmentModels))
	for i := range enrichmentModels {
		byFact[enrichmentModels[i].FactID] = enrichmentModels[i].ToEntity()
	}

	items := make([]*entity.FactWithEnrichment, len(factModels))
	for i := range factModels {
		items[i] = &entity.FactWithEnrichment{
			Fact:       factModels[i].ToEntity(),
			Enrichment: byFact[factModels[i].ID],
		}
	}
	return items, nil
}
