package loader

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// LoadStatusUseCase handles retrieving staging and fact counts for a user.
type LoadStatusUseCase struct {
	stagingRepo adapter.StagingRepository
}

// NewLoadStatusUseCase creates a new LoadStatusUseCase instance.
func NewLoadStatusUseCase(stagingRepo adapter.StagingRepository) *LoadStatusUseCase {
	return &LoadStatusUseCase{stagingRepo: stagingRepo}
}

// Execute returns the counts for the user.
func (uc *LoadStatusUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.StagingStatus, error) {
	status, err := uc.stagingRepo.Status(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get load status: %w", err)
	}
	return status, nil
}
