package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	"github.com/finance-tracker/categorizer/internal/integration/persistence/model"
)

const stagingInsertBatchSize = 500

// stagingRepository implements the adapter.StagingRepository interface.
type stagingRepository struct {
	db *gorm.DB
}

// NewStagingRepository creates a new staging repository instance.
func NewStagingRepository(db *gorm.DB) adapter.StagingRepository {
	return &stagingRepository{
		db: db,
	}
}

// CreateBatch stores the rows in one transaction.
func (r *stagingRepository) CreateBatch(ctx context.Context, rows []*entity.StagingRow) error {
	if len(rows) == 0 {
		return nil
	}
	rowModels := make([]*model.StagingRowModel, len(rows))
	for i, row := range rows {
		rowModels[i] = model.StagingRowFromEntity(row)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rowModels, stagingInsertBatchSize).Error
	})
}

// FindPendingByUser retrieves parsed rows not yet consumed by the loader.
func (r *stagingRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) ([]*entity.StagingRow, error) {
	var rowModels []model.StagingRowModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND parsed_ok = ? AND processed_at IS NULL", userID, true).
		Order("created_at ASC, txn_date ASC, id ASC").
		Find(&rowModels)
	if result.Error != nil {
		return nil, result.Error
	}

	rows := make([]*entity.StagingRow, len(rowModels))
	for i := range rowModels {
		rows[i] = rowModels[i].ToEntity()
	}
	return rows, nil
}

// MarkProcessed stamps rows as consumed. Rows already stamped keep their first timestamp.
func (r *stagingRepository) MarkProcessed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return markProcessed(r.db.WithContext(ctx), ids)
}

// RecordLoadFailure increments the row's attempt counter and stores the load error.
func (r *stagingRepository) RecordLoadFailure(ctx context.Context, id uuid.UUID, loadErr string, park bool) error {
	updates := map[string]any{
		"load_attempts": gorm.Expr("load_attempts + ?", 1),
		"load_error":    loadErr,
	}
	if park {
		updates["processed_at"] = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Model(&model.StagingRowModel{}).
		Where("id = ? AND processed_at IS NULL", id).
		Updates(updates).Error
}

// Status counts the user's staging rows and facts.
func (r *stagingRepository) Status(ctx context.Context, userID uuid.UUID) (*entity.StagingStatus, error) {
	status := &entity.StagingStatus{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.StagingRowModel{}).
		Where("user_id = ?", userID).
		Count(&status.StagingTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.StagingRowModel{}).
		Where("user_id = ? AND parsed_ok = ? AND processed_at IS NULL", userID, true).
		Count(&status.StagingPending).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.StagingRowModel{}).
		Where("user_id = ? AND parsed_ok = ?", userID, false).
		Count(&status.StagingInvalid).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.StagingRowModel{}).
		Where("user_id = ? AND processed_at IS NOT NULL AND load_error <> ''", userID).
		Count(&status.StagingFailed).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.FactModel{}).
		Where("user_id = ?", userID).
		Count(&status.Facts).Error; err != nil {
		return nil, err
	}
	return status, nil
}

// markProcessed clears any error left by an earlier failed attempt.
func markProcessed(tx *gorm.DB, ids []uuid.UUID) error {
	return tx.Model(&model.StagingRowModel{}).
		Where("id IN ? AND processed_at IS NULL", ids).
		Updates(map[string]any{
			"processed_at": time.Now().UTC(),
			"load_error":   "",
		}).Error
}
