package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/dto"
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "rule not found",
			err:    domainerror.NewRuleError(domainerror.ErrCodeRuleNotFound, "rule not found", domainerror.ErrRuleNotFound),
			status: http.StatusNotFound,
			code:   string(domainerror.ErrCodeRuleNotFound),
		},
		{
			name:   "wrapped scope violation",
			err:    fmt.Errorf("create: %w", domainerror.NewRuleError(domainerror.ErrCodeNotAuthorizedForScope, "nope", nil)),
			status: http.StatusForbidden,
			code:   string(domainerror.ErrCodeNotAuthorizedForScope),
		},
		{
			name:   "rules unavailable",
			err:    domainerror.NewRuleError(domainerror.ErrCodeRulesUnavailable, "rules unavailable", domainerror.ErrRulesUnavailable),
			status: http.StatusServiceUnavailable,
			code:   string(domainerror.ErrCodeRulesUnavailable),
		},
		{
			name:   "category exists",
			err:    domainerror.NewCategoryError(domainerror.ErrCodeCategoryCodeExists, "exists", domainerror.ErrCategoryCodeExists),
			status: http.StatusConflict,
			code:   string(domainerror.ErrCodeCategoryCodeExists),
		},
		{
			name:   "subcategory mismatch",
			err:    domainerror.NewCategoryError(domainerror.ErrCodeSubcategoryMismatch, "mismatch", nil),
			status: http.StatusBadRequest,
			code:   string(domainerror.ErrCodeSubcategoryMismatch),
		},
		{
			name:   "fact not found",
			err:    domainerror.NewLoaderError(domainerror.ErrCodeFactNotFound, "transaction not found", domainerror.ErrFactNotFound),
			status: http.StatusNotFound,
			code:   string(domainerror.ErrCodeFactNotFound),
		},
		{
			name:   "store unavailable",
			err:    domainerror.NewLoaderError(domainerror.ErrCodeStoreUnavailable, "store unavailable", domainerror.ErrStoreUnavailable),
			status: http.StatusServiceUnavailable,
			code:   string(domainerror.ErrCodeStoreUnavailable),
		},
		{
			name:   "unknown error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleError(ctx, tt.err, "Something failed")

			assert.Equal(t, tt.status, w.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHealthController_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := func() bool { return true }
	down := func() bool { return false }

	tests := []struct {
		name   string
		db     func() bool
		redis  func() bool
		status int
		want   HealthResponse
	}{
		{name: "all connected", db: up, redis: up, status: http.StatusOK, want: HealthResponse{Status: "ok", Database: "connected", Redis: "connected"}},
		{name: "redis disabled", db: up, status: http.StatusOK, want: HealthResponse{Status: "ok", Database: "connected", Redis: "disabled"}},
		{name: "redis down", db: up, redis: down, status: http.StatusOK, want: HealthResponse{Status: "ok", Database: "connected", Redis: "disconnected"}},
		{name: "database down", db: down, redis: up, status: http.StatusServiceUnavailable, want: HealthResponse{Status: "degraded", Database: "disconnected", Redis: "connected"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			NewHealthController(tt.db, tt.redis).Check(ctx)

			assert.Equal(t, tt.status, w.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want.Status, body.Status)
			assert.Equal(t, tt.want.Database, body.Database)
			assert.Equal(t, tt.want.Redis, body.Redis)
		})
	}
}
