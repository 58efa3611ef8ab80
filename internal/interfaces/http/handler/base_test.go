package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/greenshop/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// baseCall runs fn against a fresh context tagged with a request id
func baseCall(fn func(*BaseHandler, *gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(logger.GinRequestIDKey, "req-42")
	fn(&BaseHandler{}, c)
	return w
}

func TestBaseHandler_SuccessEnvelopes(t *testing.T) {
	w := baseCall(func(h *BaseHandler, c *gin.Context) { h.Success(c, gin.H{"key": "value"}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	w = baseCall(func(h *BaseHandler, c *gin.Context) { h.Created(c, gin.H{"id": 7}) })
	assert.Equal(t, http.StatusCreated, w.Code)

	w = baseCall(func(h *BaseHandler, c *gin.Context) { h.SuccessList(c, []string{"a", "b"}, 2, 50) })
	meta := decodeResponse(t, w).Meta
	require.NotNil(t, meta)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, 50, meta.Limit)
}

func TestBaseHandler_NoContent(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.DELETE("/x", h.NoContent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/x", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped", fmt.Errorf("load: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"empty cart", shared.NewDomainError("EMPTY_CART", "empty"), http.StatusUnprocessableEntity, dto.ErrCodeEmptyCart},
		{"rate limited", shared.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrCodeRateLimited},
		{"invalid field", shared.NewDomainError("INVALID_PRICE", "bad price"), http.StatusBadRequest, "ERR_INVALID_PRICE"},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := baseCall(func(h *BaseHandler, c *gin.Context) { h.HandleError(c, tt.err) })

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-42", resp.Error.RequestID)
		})
	}

	w := baseCall(func(h *BaseHandler, c *gin.Context) { h.HandleError(c, nil) })
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandler_Unauthorized(t *testing.T) {
	w := baseCall(func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "who") })

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
}

func TestBaseHandler_ParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		if _, ok := h.parseUUIDParam(c, "id"); ok {
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/6f1c2d7e-1111-4c4c-8a8a-000000000001", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
