// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// RuleRepository defines the interface for rule persistence operations.
type RuleRepository interface {
	// FindActiveForScope retrieves the active rules visible to a scope (its own plus global),
	// ordered by priority ascending, then created_at descending.
	FindActiveForScope(ctx context.Context, scope entity.Scope) ([]*entity.Rule, error)

	// FindByScope retrieves the rules owned by exactly one scope, including inactive ones.
	FindByScope(ctx context.Context, scope entity.Scope) ([]*entity.Rule, error)

	// FindByID retrieves a rule by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Rule, error)

	// Upsert inserts the rule or, when (scope, applies_to, pattern_fingerprint) already exists,
	// overwrites its category, subcategory, priority and provenance and reactivates it.
	// The stored rule is returned.
	Upsert(ctx context.Context, rule *entity.Rule) (*entity.Rule, error)

	// Deactivate soft-disables a rule.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// CountLearnedSince counts learned rules created by actor in scope since the given time.
	CountLearnedSince(ctx context.Context, actor uuid.UUID, scope entity.Scope, since time.Time) (int64, error)
}
