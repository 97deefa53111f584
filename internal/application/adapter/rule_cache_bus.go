// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// RuleCacheBus broadcasts rule cache invalidations to other service instances.
type RuleCacheBus interface {
	// Publish announces that the rules of scope changed.
	Publish(ctx context.Context, scope entity.Scope) error

	// Subscribe calls onInvalidate for every announcement until ctx is done.
	Subscribe(ctx context.Context, onInvalidate func(scope entity.Scope)) error
}

// AggregateNotifier tells downstream aggregation that a user's facts changed.
type AggregateNotifier interface {
	// InvalidateAggregates drops cached aggregates of the user.
	InvalidateAggregates(ctx context.Context, userID string) error

	// PublishLoadCompleted announces a finished load.
	PublishLoadCompleted(ctx context.Context, event LoadCompletedEvent) error
}

// LoadCompletedEvent is published after a load inserted facts.
type LoadCompletedEvent struct {
	UserID   string `json:"user_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}
