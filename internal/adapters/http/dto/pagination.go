package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// Page size bounds for GET /quotes.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor is returned for a cursor this server did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationRequest carries the paging query parameters.
type PaginationRequest struct {
	// Cursor is the NextCursor of the previous page; empty for the first page.
	Cursor string `form:"cursor"`

	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns Limit clamped to [1, MaxLimit], or DefaultLimit when unset.
func (p PaginationRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// PaginatedResponse is one page of a listing.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// quoteCursor marks the last quote of a page by its position in store order
// and, for quotes that have one, its id.
type quoteCursor struct {
	Pos int   `json:"p"`
	ID  int64 `json:"id,omitempty"`
}

func (c quoteCursor) encode() string {
	raw, _ := json.Marshal(c)

	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeQuoteCursor(s string) (quoteCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return quoteCursor{}, ErrInvalidCursor
	}

	var c quoteCursor
	if err := json.Unmarshal(raw, &c); err != nil || c.Pos < 0 {
		return quoteCursor{}, ErrInvalidCursor
	}

	return c, nil
}

// resume returns the index the next page starts at. When the quote the
// cursor points to has moved, for example because a sync added quotes in
// front of it, the page resumes after its new position.
func (c quoteCursor) resume(quotes []domain.Quote) int {
	if c.ID != 0 && (c.Pos >= len(quotes) || quotes[c.Pos].ID != c.ID) {
		for i, q := range quotes {
			if q.ID == c.ID {
				return i + 1
			}
		}
	}

	return c.Pos + 1
}

// QuotePage returns the page of quotes that follows req.Cursor.
func QuotePage(quotes []domain.Quote, req PaginationRequest) (*PaginatedResponse[QuoteResponse], error) {
	start := 0

	if req.Cursor != "" {
		cursor, err := decodeQuoteCursor(req.Cursor)
		if err != nil {
			return nil, err
		}

		start = cursor.resume(quotes)
	}

	page := &PaginatedResponse[QuoteResponse]{Items: []QuoteResponse{}}
	if start >= len(quotes) {
		return page, nil
	}

	end := min(start+req.GetLimit(), len(quotes))
	page.Items = FromQuotes(quotes[start:end])

	if end < len(quotes) {
		last := quotes[end-1]
		page.HasMore = true
		page.NextCursor = quoteCursor{Pos: end - 1, ID: last.ID}.encode()
	}

	return page, nil
}
