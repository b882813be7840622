package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"blank domain", util.ErrDomainRequired, http.StatusBadRequest},
		{"not found", util.ErrCertificateNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", util.ErrLearningPathNotFound), http.StatusNotFound},
		{"duplicate certificate", util.ErrCertificateExists, http.StatusConflict},
		{"lock busy", util.ErrLockNotAcquired, http.StatusConflict},
		{"ai unavailable", util.ErrContentGeneration, http.StatusServiceUnavailable},
		{"render failed", util.ErrRenderFailed, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(ctx, tt.err)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestCurrentUserIDWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	id, ok := currentUserID(ctx)
	assert.False(t, ok)
	assert.Zero(t, id)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
