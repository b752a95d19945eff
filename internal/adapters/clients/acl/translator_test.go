package acl

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestDecodeResponse(t *testing.T) {
	body := &closeRecorder{Reader: strings.NewReader(`[{"id":1,"title":"a"},{"id":2,"title":"b"}]`)}

	posts, err := DecodeResponse[[]postDTO](body)

	require.NoError(t, err)
	assert.Equal(t, []postDTO{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}, posts)
	assert.True(t, body.closed)
}

func TestDecodeResponse_Failures(t *testing.T) {
	oversized := `"` + strings.Repeat("x", maxResponseBytes) + `"`

	tests := []struct {
		name string
		body io.ReadCloser
		want string
	}{
		{"nil body", nil, "nil"},
		{"not json", io.NopCloser(strings.NewReader("<html>")), "decoding response"},
		{"wrong shape", io.NopCloser(strings.NewReader(`{"id":1}`)), "decoding response"},
		{"too large", io.NopCloser(strings.NewReader(oversized)), "decoding response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse[[]postDTO](tt.body)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTranslateSlice(t *testing.T) {
	double := func(n *int) (int, error) {
		if *n < 0 {
			return 0, domain.NewValidationError("n", "must not be negative")
		}

		return *n * 2, nil
	}

	assert.Equal(t, []int{2, 4, 6}, TranslateSlice([]int{1, 2, 3}, double, nil))
	assert.Empty(t, TranslateSlice(nil, double, nil))

	var skipped []int

	got := TranslateSlice([]int{1, -1, 3, -4}, double, func(i int, err error) {
		assert.True(t, domain.IsValidation(err))
		skipped = append(skipped, i)
	})

	assert.Equal(t, []int{2, 6}, got)
	assert.Equal(t, []int{1, 3}, skipped)
	assert.Equal(t, []int{2}, TranslateSlice([]int{-1, 1}, double, nil), "nil skip drops rejected items")
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ok   bool
	}{
		{"text present", ValidateRequired("Ship it.", "text"), true},
		{"text blank", ValidateRequired("", "text"), false},
		{"positive id", ValidatePositive(int64(7), "id"), true},
		{"zero id", ValidatePositive(int64(0), "id"), false},
		{"negative id", ValidatePositive(-3, "id"), false},
		{"positive rate", ValidatePositive(0.5, "rate"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok {
				assert.NoError(t, tt.err)
				return
			}

			var ve *domain.ValidationError
			require.True(t, errors.As(tt.err, &ve))
			assert.NotEmpty(t, ve.Field)
		})
	}
}
