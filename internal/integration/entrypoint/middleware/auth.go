// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID.
	UserIDKey ContextKey = "user_id"
	// ScopeKey is the context key for the rule scope of the caller.
	ScopeKey ContextKey = "scope"
	// RoleKey is the context key for the caller's role.
	RoleKey ContextKey = "role"
)

// AuthMiddleware provides JWT authentication middleware.
type AuthMiddleware struct {
	tokenService adapter.TokenService
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(tokenService adapter.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate returns a Gin middleware handler that enforces JWT authentication.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Authorization header is required",
				Code:  string(domainerror.ErrCodeMissingToken),
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Invalid authorization header format",
				Code:  string(domainerror.ErrCodeInvalidToken),
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Token is required",
				Code:  string(domainerror.ErrCodeMissingToken),
			})
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			code := domainerror.ErrCodeInvalidToken
			var authErr *domainerror.AuthError
			if errors.As(err, &authErr) {
				code = authErr.Code
			} else if errors.Is(err, domainerror.ErrExpiredToken) {
				code = domainerror.ErrCodeExpiredToken
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "Invalid or expired token",
				Code:  string(code),
			})
			return
		}

		c.Set(string(UserIDKey), claims.UserID)
		c.Set(string(ScopeKey), ScopeFor(claims))
		c.Set(string(RoleKey), claims.Role)

		c.Next()
	}
}

// RequireOps aborts requests whose identity does not carry the ops role.
// It must run after Authenticate.
func RequireOps() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsOps(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Error: "Operation requires the ops role",
				Code:  string(domainerror.ErrCodeForbidden),
			})
			return
		}
		c.Next()
	}
}

// ScopeFor returns the rule scope for an identity: the tenant when present, else the user.
func ScopeFor(claims *adapter.TokenClaims) entity.Scope {
	if tenant := strings.TrimSpace(claims.TenantID); tenant != "" {
		return entity.Scope(tenant)
	}
	return entity.Scope(claims.UserID.String())
}

// GetUserIDFromContext extracts the user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetScopeFromContext extracts the caller's rule scope from the Gin context.
func GetScopeFromContext(c *gin.Context) (entity.Scope, bool) {
	scope, exists := c.Get(string(ScopeKey))
	if !exists {
		return "", false
	}
	s, ok := scope.(entity.Scope)
	return s, ok
}

// IsOps reports whether the authenticated caller has the ops role.
func IsOps(c *gin.Context) bool {
	return c.GetString(string(RoleKey)) == adapter.RoleOps
}
