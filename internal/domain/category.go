package domain

import "sort"

// Categories derives the distinct categories present in quotes, sorted lexicographically.
// It is recomputed from scratch on every call; an empty input yields an empty slice.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]string, 0, len(quotes))

	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	sort.Strings(out)

	return out
}

// FilterOptions returns the selectable filter values: FilterAll followed by categories.
func FilterOptions(categories []string) []string {
	out := make([]string, 0, len(categories)+1)
	out = append(out, FilterAll)

	return append(out, categories...)
}

// HasCategory reports whether category is one of categories.
func HasCategory(categories []string, category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}

	return false
}

// ResolveFilter returns saved when it still names an existing category, FilterAll otherwise.
func ResolveFilter(saved string, categories []string) string {
	if saved == FilterAll || HasCategory(categories, saved) {
		return saved
	}

	return FilterAll
}
