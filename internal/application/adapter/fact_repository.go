// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// FactFilter contains filter options for listing facts.
type FactFilter struct {
	UserID  *uuid.UUID // nil lists every user
	AfterID *uuid.UUID // keyset cursor, exclusive
	Limit   int
}

// FactRepository defines the interface for fact and enrichment persistence operations.
type FactRepository interface {
	// ExistsByFingerprint checks whether the user already has a fact with the fingerprint.
	ExistsByFingerprint(ctx context.Context, userID uuid.UUID, fingerprint string) (bool, error)

	// InsertLoaded commits one staging row in its own transaction: missing reference rows,
	// the fact, its enrichment and the processed mark on the staging row.
	// A fingerprint collision rolls the transaction back and returns ErrDuplicateFact.
	InsertLoaded(ctx context.Context, loaded *entity.LoadedFact) error

	// FindByID retrieves a user's fact with its enrichment.
	FindByID(ctx context.Context, userID, factID uuid.UUID) (*entity.FactWithEnrichment, error)

	// List retrieves facts with enrichments ordered by ID.
	List(ctx context.Context, filter FactFilter) ([]*entity.FactWithEnrichment, error)

	// FindRecentByUser retrieves a user's most recent facts.
	FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Fact, error)

	// ReplaceEnrichments overwrites enrichments in one transaction, skipping manual ones
	// unless the replacement is itself manual. Missing reference rows are created.
	ReplaceEnrichments(ctx context.Context, replacements []*entity.LoadedFact) (int, error)
}
