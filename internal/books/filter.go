package books

import (
	"fmt"
	"slices"
	"strings"
)

// SortField orders a book list.
type SortField string

const (
	SortByTitle  SortField = "title"
	SortByAuthor SortField = "author"
	SortByStatus SortField = "status"
)

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(s)); f {
	case SortByTitle, SortByAuthor, SortByStatus:
		return f, nil
	}
	return "", fmt.Errorf("invalid sort field %q: expected title, author or status", s)
}

// ListOptions narrows and orders a book list on the client side.
type ListOptions struct {
	// Status keeps only books with this status when set.
	Status Status
	// Search matches title or author, case-insensitively.
	Search string
	SortBy SortField
}

// Filter returns the books matching opts in the requested order.
// The input slice is not modified.
func Filter(list []Book, opts ListOptions) []Book {
	query := strings.ToLower(strings.TrimSpace(opts.Search))

	out := make([]Book, 0, len(list))
	for _, b := range list {
		if opts.Status != "" && b.Status != opts.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Title), query) &&
			!strings.Contains(strings.ToLower(b.Author), query) {
			continue
		}
		out = append(out, b)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortByTitle
	}
	slices.SortStableFunc(out, func(a, b Book) int {
		return strings.Compare(sortKey(a, sortBy), sortKey(b, sortBy))
	})
	return out
}

func sortKey(b Book, f SortField) string {
	switch f {
	case SortByAuthor:
		return strings.ToLower(b.Author)
	case SortByStatus:
		return string(b.Status)
	default:
		return strings.ToLower(b.Title)
	}
}
