// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Roles carried in identity tokens.
const (
	RoleUser = "user"
	RoleOps  = "ops"
)

// TokenClaims represents the identity claims contained in an access token.
type TokenClaims struct {
	UserID    uuid.UUID
	TenantID  string
	Role      string
	ExpiresAt time.Time
}

// TokenService defines the interface for identity token validation.
// Tokens are issued by the upstream identity service.
type TokenService interface {
	// ValidateAccessToken validates an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)
}
