package rule

import (
	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

// Caller identifies who manages rules and in which tenant scope.
type Caller struct {
	UserID uuid.UUID
	Scope  entity.Scope
	IsOps  bool
}

// authorize rejects writes outside the caller's own scope. Ops may write any scope, including global.
func (c Caller) authorize(scope entity.Scope) error {
	scope = scope.Normalize()
	if c.IsOps || (!scope.IsGlobal() && scope == c.Scope.Normalize()) {
		return nil
	}
	return domainerror.NewRuleError(
		domainerror.ErrCodeNotAuthorizedForScope,
		"not authorized to modify rules in scope "+string(scope),
		domainerror.ErrNotAuthorizedForScope,
	)
}
