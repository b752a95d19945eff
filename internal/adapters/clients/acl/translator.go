package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// maxResponseBytes caps how much of a remote answer is decoded.
const maxResponseBytes = 4 << 20

var errNilBody = errors.New("response body is nil")

// DecodeResponse decodes a JSON body into T and closes it. Bodies larger
// than maxResponseBytes fail to decode.
func DecodeResponse[T any](body io.ReadCloser) (T, error) {
	var out T

	if body == nil {
		return out, errNilBody
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&out); err != nil {
		return out, fmt.Errorf("decoding response: %w", err)
	}

	return out, nil
}

// Translator converts one external item into its domain form, rejecting
// items that break domain rules.
type Translator[E, D any] func(item *E) (D, error)

// TranslateSlice translates every item and keeps the ones translate accepts.
// Each rejected item is handed to skip with its index; skip may be nil.
func TranslateSlice[E, D any](items []E, translate Translator[E, D], skip func(index int, err error)) []D {
	out := make([]D, 0, len(items))

	for i := range items {
		d, err := translate(&items[i])
		if err != nil {
			if skip != nil {
				skip(i, err)
			}

			continue
		}

		out = append(out, d)
	}

	return out
}

// ValidateRequired rejects an empty value.
func ValidateRequired(value, field string) error {
	if value == "" {
		return domain.NewValidationError(field, "must not be blank")
	}

	return nil
}

// ValidatePositive rejects zero and negative values.
func ValidatePositive[N ~int | ~int64 | ~float64](value N, field string) error {
	if value > 0 {
		return nil
	}

	return domain.NewValidationErrorWithValue(field, "must be positive", value)
}
