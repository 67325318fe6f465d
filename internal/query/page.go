package query

// Paginate returns the 1-based page of size items. The page number is
// clamped to the valid range first, so a stale out-of-range page from the
// caller returns the last valid page instead of an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || len(items) == 0 {
		return items
	}
	page = ClampPage(len(items), page, size)
	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ClampPage clamps a 1-based page number to the valid range for n items.
// The result is the page Paginate actually serves for the same arguments.
func ClampPage(n, page, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	last := (n + size - 1) / size
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// TotalPages returns the page count for a collection of n items.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}
