package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/studyhub/backend/internal/domain/shared"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestBaseHandlerResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success wraps data in the envelope", func(t *testing.T) {
		c, w := newTestContext()
		h.Success(c, gin.H{"name": "Computer Science"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":true`)
		assert.Contains(t, w.Body.String(), "Computer Science")
	})

	t.Run("created returns 201", func(t *testing.T) {
		c, w := newTestContext()
		h.Created(c, gin.H{"id": "abc"})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content returns an empty 204", func(t *testing.T) {
		c, w := newTestContext()
		h.NoContent(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("error carries the request id when set", func(t *testing.T) {
		c, w := newTestContext()
		c.Set(RequestIDKey, "req-123")
		h.BadRequest(c, "bad input")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "req-123")
		assert.Contains(t, w.Body.String(), `"success":false`)
	})
}

func TestHandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.NewDomainError("NOT_FOUND", "Subject not found"), http.StatusNotFound, "ERR_NOT_FOUND"},
		{"already exists", shared.NewDomainError("ALREADY_EXISTS", "Branch already exists"), http.StatusConflict, "ERR_ALREADY_EXISTS"},
		{"still referenced", shared.NewDomainError("STILL_REFERENCED", "Branch still has subjects"), http.StatusConflict, "ERR_CONFLICT"},
		{"validation", shared.NewDomainError("INVALID_NAME", "Name is required"), http.StatusBadRequest, "ERR_VALIDATION"},
		{"forbidden", shared.NewDomainError("FORBIDDEN", "Not the owner"), http.StatusForbidden, "ERR_FORBIDDEN"},
		{"invalid state", shared.NewDomainError("INVALID_STATE", "File already active"), http.StatusUnprocessableEntity, "ERR_INVALID_STATE"},
		{"unknown error", errors.New("db connection lost"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}

	t.Run("internal errors never leak the message", func(t *testing.T) {
		c, w := newTestContext()
		h.HandleError(c, errors.New("password=hunter2"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext()
		h.HandleError(c, nil)

		assert.Empty(t, w.Body.String())
	})
}

func TestParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}

	t.Run("rejects malformed ids", func(t *testing.T) {
		c, w := newTestContext()
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		_, ok := h.parseUUIDParam(c, "id")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("accepts valid ids", func(t *testing.T) {
		c, w := newTestContext()
		want := uuid.New()
		c.Params = gin.Params{{Key: "id", Value: want.String()}}

		got, ok := h.parseUUIDParam(c, "id")

		assert.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
