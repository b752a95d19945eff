package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	refused := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		msg     string
		kind    error
		matches func(error) bool
	}{
		{"remote post missing", NewNotFoundError("post", "42"), `post "42" not found`, ErrNotFound, IsNotFound},
		{"not found without id", NewNotFoundError("post", ""), "post not found", ErrNotFound, IsNotFound},
		{"conflict", NewConflictError("post", "already exists"), "post conflict: already exists", ErrConflict, IsConflict},
		{"blank text", NewValidationError("text", "must not be blank"), "invalid text: must not be blank", ErrValidation, IsValidation},
		{"validation without field", NewValidationError("", "empty"), "invalid quote: empty", ErrValidation, IsValidation},
		{"forbidden", NewForbiddenError("publish", "read only"), "publish not permitted: read only", ErrForbidden, IsForbidden},
		{"forbidden without reason", NewForbiddenError("publish", ""), "publish not permitted", ErrForbidden, IsForbidden},
		{"remote down", NewUnavailableError("quote-source", "HTTP 503"), "quote-source is unavailable: HTTP 503", ErrUnavailable, IsUnavailable},
		{"unavailable without reason", NewUnavailableError("quote-source", ""), "quote-source is unavailable", ErrUnavailable, IsUnavailable},
		{"not an array", NewFormatError("expected a JSON array"), "invalid format: expected a JSON array", ErrFormat, IsFormat},
		{"sync", NewSyncError("quote-source", refused), "sync with quote-source failed: connection refused", ErrSync, IsSync},
		{"sync without cause", NewSyncError("static", nil), "sync with static failed", ErrSync, IsSync},
		{"post", NewPostError(refused), "posting quote failed: connection refused", ErrPost, IsPost},
		{"post without cause", NewPostError(nil), "posting quote failed", ErrPost, IsPost},
		{"empty export", NewEmptyStoreError("export"), "cannot export: no quotes stored", ErrEmptyStore, IsEmptyStore},
	}

	kinds := []error{ErrNotFound, ErrConflict, ErrValidation, ErrForbidden, ErrUnavailable, ErrFormat, ErrSync, ErrPost, ErrEmptyStore}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.kind)
			assert.True(t, tt.matches(fmt.Errorf("handler: %w", tt.err)), "predicate sees through wrapping")

			for _, other := range kinds {
				if other != tt.kind {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestSyncError_MatchesCause(t *testing.T) {
	cause := NewUnavailableError("quote-source", "circuit open")
	err := fmt.Errorf("scheduled sync: %w", NewSyncError("quote-source", cause))

	assert.True(t, IsSync(err))
	assert.True(t, IsUnavailable(err), "cause stays reachable")

	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "quote-source", syncErr.Source)

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "circuit open", unavailable.Reason)
}

func TestPostError_MatchesCause(t *testing.T) {
	err := NewPostError(NewValidationError("title", "missing from response"))

	assert.True(t, IsPost(err))
	assert.True(t, IsValidation(err))
	assert.False(t, IsPost(NewValidationError("title", "missing")))
}

func TestValidationError_CarriesValue(t *testing.T) {
	err := fmt.Errorf("set filter: %w", NewValidationErrorWithValue("category", "unknown category", "Humor"))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category", ve.Field)
	assert.Equal(t, "Humor", ve.Value)
}

func TestPredicates_NilError(t *testing.T) {
	for _, is := range []func(error) bool{
		IsNotFound, IsConflict, IsValidation, IsForbidden, IsUnavailable,
		IsFormat, IsSync, IsPost, IsEmptyStore,
	} {
		assert.False(t, is(nil))
	}
}
