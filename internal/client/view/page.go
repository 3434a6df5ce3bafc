package view

// Page is one page of a filtered list.
type Page struct {
	// Number is the 1-based page actually shown, after clamping.
	Number int
	// Total is the number of pages; at least 1 even for an empty list.
	Total int
	// Size is the effective page size.
	Size int
	// Count is the length of the filtered list.
	Count int
	// Indices are the collection indices visible on this page.
	Indices []int
}

// TotalPages returns ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	n := (count + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

// Paginate clamps page into [1, TotalPages] and returns the matching slice of
// filtered.
func Paginate(filtered []int, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	total := TotalPages(len(filtered), pageSize)
	page = min(max(page, 1), total)

	start := min((page-1)*pageSize, len(filtered))
	end := min(page*pageSize, len(filtered))

	indices := make([]int, end-start)
	copy(indices, filtered[start:end])

	return Page{
		Number:  page,
		Total:   total,
		Size:    pageSize,
		Count:   len(filtered),
		Indices: indices,
	}
}

// PageOf returns the page on which collectionIndex appears in filtered. The
// second result is false when the index has been filtered out.
func PageOf(filtered []int, collectionIndex, pageSize int) (int, bool) {
	if pageSize < 1 {
		pageSize = 1
	}
	for pos, idx := range filtered {
		if idx == collectionIndex {
			return pos/pageSize + 1, true
		}
	}
	return 0, false
}
