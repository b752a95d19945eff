package dto

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

	"github.com/jsamuelsen/quotebook/internal/domain"
)

func testContext(method string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", http.NoBody)

	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestMapDomainError(t *testing.T) {
	unavailable := domain.NewUnavailableError("posts", "timeout")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"missing last viewed", domain.NewNotFoundError("quote", "42"), http.StatusNotFound, ErrorCodeNotFound, ""},
		{"duplicate id", domain.NewConflictError("quote", "duplicate id"), http.StatusConflict, ErrorCodeConflict, ""},
		{"blank text", domain.NewValidationError("text", "must not be empty"), http.StatusBadRequest, ErrorCodeValidation, "text"},
		{"validation without field", domain.NewValidationError("", "invalid input"), http.StatusBadRequest, ErrorCodeValidation, ""},
		{
			"wrapped validation keeps field",
			fmt.Errorf("adding quote: %w", domain.NewValidationError("category", "must not be empty")),
			http.StatusBadRequest, ErrorCodeValidation, "category",
		},
		{"import not an array", domain.NewFormatError("expected a JSON array"), http.StatusBadRequest, ErrorCodeFormat, ""},
		{"export of empty store", domain.NewEmptyStoreError("export"), http.StatusConflict, ErrorCodeEmptyStore, ""},
		{"sync wins over its cause", domain.NewSyncError("posts", unavailable), http.StatusServiceUnavailable, ErrorCodeSync, ""},
		{
			"post wins over its cause",
			domain.NewPostError(domain.NewValidationError("title", "missing from response")),
			http.StatusBadGateway, ErrorCodePost, "",
		},
		{"remote refused", domain.NewForbiddenError("publish", "read-only token"), http.StatusForbidden, ErrorCodeForbidden, ""},
		{"storage down", domain.NewUnavailableError("storage", "connection refused"), http.StatusServiceUnavailable, ErrorCodeUnavailable, ""},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.status, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.code, resp.Error.Code)

			if tt.field != "" {
				assert.Contains(t, resp.Error.Details, tt.field)
			}
		})
	}
}

func TestMapDomainError_Nil(t *testing.T) {
	status, resp := MapDomainError(nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestMapDomainError_HidesUnavailableDetails(t *testing.T) {
	_, resp := MapDomainError(domain.NewUnavailableError("storage", "dial tcp 10.0.0.5:5432"))

	assert.NotContains(t, resp.Error.Message, "10.0.0.5")
}

func TestAbortWithError(t *testing.T) {
	c, w := testContext(http.MethodGet)
	c.Request.Header.Set("X-Request-ID", "req-1")

	AbortWithError(c, domain.NewNotFoundError("quote", "last viewed"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "req-1", resp.TraceID)
}

func TestRespondWithErrorCode(t *testing.T) {
	c, w := testContext(http.MethodGet)

	RespondWithErrorCode(c, ErrorCodeBadRequest, "invalid cursor")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid cursor", decodeError(t, w).Error.Message)
}

func TestRespondWithBindingError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  string
		field string
	}{
		{
			name:  "rule violation lists fields",
			err:   Validate(&AddQuoteRequest{Text: "  ", Category: "Wisdom"}),
			code:  ErrorCodeValidation,
			field: "text",
		},
		{
			name: "malformed body",
			err:  fmt.Errorf("%w: unexpected EOF", ErrBinding),
			code: ErrorCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(http.MethodPost)

			RespondWithBindingError(c, tt.err)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Error.Code)

			if tt.field != "" {
				assert.Equal(t, "must not be empty", resp.Error.Details[tt.field])
			}
		})
	}
}
