package services

// Page is one page of a page-number paginated list.
type Page[T any] struct {
	Items       []T
	TotalItems  int
	TotalPages  int
	CurrentPage int
	HasMore     bool
}

// Paginate slices an already filtered and sorted list. page is 1-indexed;
// values below 1 are treated as 1, and pageSize below 1 as 1. Pages past
// the end are empty but still report the full totals.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:       items[start:end],
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasMore:     page < totalPages,
	}
}
