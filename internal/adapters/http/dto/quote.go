package dto

import (
	"time"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// QuoteResponse is the wire form of a quote.
type QuoteResponse struct {
	ID       int64  `json:"id,omitempty"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// FromQuote converts a domain quote to its response form.
func FromQuote(q domain.Quote) QuoteResponse {
	return QuoteResponse{ID: q.ID, Text: q.Text, Category: q.Category}
}

// FromQuotes converts a slice of domain quotes, never returning nil.
func FromQuotes(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, FromQuote(q))
	}

	return out
}

// AddQuoteRequest is the body of POST /quotes.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"notblank,max=1000"`
	Category string `json:"category" validate:"notblank,max=100,category"`
}

// ListQuotesRequest holds the query parameters of GET /quotes.
type ListQuotesRequest struct {
	PaginationRequest

	Category string `form:"category"`
}

// RandomQuoteResponse is returned by GET /quotes/random. Quote is null when
// nothing matches the filter.
type RandomQuoteResponse struct {
	Quote   *QuoteResponse `json:"quote"`
	Filter  string         `json:"filter"`
	Message string         `json:"message,omitempty"`
}

// CategoriesResponse lists the categories and the options a filter may take.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Options    []string `json:"options"`
	Filter     string   `json:"filter"`
}

// FilterRequest is the body of PUT /filter.
type FilterRequest struct {
	Category string `json:"category" validate:"notblank"`
}

// FilterResponse reports the active filter.
type FilterResponse struct {
	Category string `json:"category"`
}

// ImportResponse reports the outcome of POST /quotes/import.
type ImportResponse struct {
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
	Policy   string `json:"policy"`
}

// SyncResponse reports the outcome of POST /sync.
type SyncResponse struct {
	Added      int   `json:"added"`
	Total      int   `json:"total"`
	DurationMS int64 `json:"durationMs"`
}

// NoticeResponse is the wire form of a notice.
type NoticeResponse struct {
	ID      string    `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
