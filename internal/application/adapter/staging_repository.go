// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// StagingRepository defines the interface for staging row operations.
type StagingRepository interface {
	// CreateBatch stores a batch of staging rows.
	CreateBatch(ctx context.Context, rows []*entity.StagingRow) error

	// FindPendingByUser retrieves parsed, not yet processed rows for a user in intake order.
	FindPendingByUser(ctx context.Context, userID uuid.UUID) ([]*entity.StagingRow, error)

	// MarkProcessed stamps rows as consumed by the loader.
	MarkProcessed(ctx context.Context, ids []uuid.UUID) error

	// RecordLoadFailure counts a failed load attempt and keeps its error.
	// When park is true the row is also stamped processed so it leaves the pending set.
	RecordLoadFailure(ctx context.Context, id uuid.UUID, loadErr string, park bool) error

	// Status counts staging rows and facts for a user.
	Status(ctx context.Context, userID uuid.UUID) (*entity.StagingStatus, error)
}
