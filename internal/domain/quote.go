package domain

import "strings"

// FilterAll is the category filter sentinel that matches every quote.
const FilterAll = "all"

// Quote is a single quotation with the category it is filed under.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID identifies the quote. Zero means the quote has no id: it is a
	// local-only record that remote data never overwrites.
	ID int64 `json:"id,omitempty"`

	// Text is the quotation itself.
	Text string `json:"text"`

	// Category groups quotes for filtering.
	Category string `json:"category"`
}

// HasID reports whether the quote takes part in id-keyed reconciliation.
func (q Quote) HasID() bool {
	return q.ID != 0
}

// Validate checks that the quote carries non-empty text and a category other
// than the FilterAll sentinel.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}

	switch strings.TrimSpace(q.Category) {
	case "":
		return NewValidationError("category", "must not be empty")
	case FilterAll:
		return NewValidationErrorWithValue("category", "is reserved for the all-categories filter", q.Category)
	}

	return nil
}

// Normalized returns a copy with surrounding whitespace trimmed from text and category.
func (q Quote) Normalized() Quote {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)

	return q
}

// DefaultQuotes returns the built-in list used when nothing usable is persisted.
func DefaultQuotes() []Quote {
	return []Quote{
		{ID: 1, Text: "The only way to do great work is to love what you do.", Category: "Inspiration"},
		{ID: 2, Text: "Strive not to be a success, but rather to be of value.", Category: "Wisdom"},
		{ID: 3, Text: "The mind is everything. What you think you become.", Category: "Philosophy"},
		{ID: 4, Text: "An unexamined life is not worth living.", Category: "Philosophy"},
	}
}

// FilterByCategory returns the quotes matching filter. FilterAll matches everything.
// The result never aliases the input slice.
func FilterByCategory(quotes []Quote, filter string) []Quote {
	out := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if filter == FilterAll || q.Category == filter {
			out = append(out, q)
		}
	}

	return out
}

// MaxID returns the largest id in quotes, or zero when none carry an id.
func MaxID(quotes []Quote) int64 {
	var maxID int64

	for _, q := range quotes {
		if q.ID > maxID {
			maxID = q.ID
		}
	}

	return maxID
}

// ContainsID reports whether any quote has the given non-zero id.
func ContainsID(quotes []Quote, id int64) bool {
	if id == 0 {
		return false
	}

	for _, q := range quotes {
		if q.ID == id {
			return true
		}
	}

	return false
}

// ImportPolicy decides how imported quotes combine with the existing store.
type ImportPolicy string

const (
	// ImportReplace overwrites the entire store with the imported quotes.
	ImportReplace ImportPolicy = "replace"

	// ImportAppend appends imported quotes; duplicate ids are allowed.
	ImportAppend ImportPolicy = "append"
)

// ParseImportPolicy converts a string into an ImportPolicy.
func ParseImportPolicy(s string) (ImportPolicy, error) {
	switch ImportPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ImportReplace:
		return ImportReplace, nil
	case ImportAppend:
		return ImportAppend, nil
	default:
		return "", NewValidationErrorWithValue("policy", "must be one of: replace append", s)
	}
}
