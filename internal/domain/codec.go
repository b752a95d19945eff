package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// quoteRecord mirrors the JSON document shape; pointer fields tell absent from empty.
type quoteRecord struct {
	ID       int64   `json:"id"`
	Text     *string `json:"text"`
	Category *string `json:"category"`
}

// DecodeQuotes parses a JSON document that must be an array of quote objects.
// Every record needs non-empty text and category; id is optional.
// Text and category are trimmed. Any violation yields a FormatError.
func DecodeQuotes(data []byte) ([]Quote, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewFormatError("expected a JSON array of quotes")
	}

	var raw []json.RawMessage

	err := json.Unmarshal(trimmed, &raw)
	if err != nil {
		return nil, NewFormatError("malformed JSON: " + err.Error())
	}

	quotes := make([]Quote, 0, len(raw))

	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, NewFormatError(fmt.Sprintf("record %d is not an object", i))
		}

		var rec quoteRecord

		err = json.Unmarshal(item, &rec)
		if err != nil {
			return nil, NewFormatError(fmt.Sprintf("record %d: %v", i, err))
		}

		if rec.Text == nil || rec.Category == nil {
			return nil, NewFormatError(fmt.Sprintf("record %d: text and category are required", i))
		}

		q := Quote{ID: rec.ID, Text: *rec.Text, Category: *rec.Category}.Normalized()

		err = q.Validate()
		if err != nil {
			return nil, NewFormatError(fmt.Sprintf("record %d: %v", i, err))
		}

		quotes = append(quotes, q)
	}

	return quotes, nil
}

// EncodeQuotes renders quotes as a 2-space indented JSON array with a trailing newline.
// A nil slice encodes as an empty array.
func EncodeQuotes(quotes []Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}

	out, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return append(out, '\n'), nil
}
