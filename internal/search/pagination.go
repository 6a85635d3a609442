package search

import (
	"errors"
	"fmt"
)

// WindowSize is the number of page buttons shown at once.
const WindowSize = 5

var ErrPageOutOfRange = errors.New("page out of range")

// TotalPages returns ceil(totalCount/pageSize), 0 for an empty result.
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

// ClampPage keeps page inside [1, totalPages]; with no pages it is 1.
func ClampPage(page, totalPages int) int {
	if totalPages <= 0 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// GoToPage validates a navigation request. Out-of-range requests are rejected
// and the caller keeps current.
func GoToPage(current, requested, totalPages int) (int, error) {
	if requested < 1 || requested > totalPages {
		return current, fmt.Errorf("%w: %d not in [1, %d]", ErrPageOutOfRange, requested, totalPages)
	}
	return requested, nil
}

// PageWindow lists the page numbers to render around current.
func PageWindow(current, totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}

	first, last := 1, totalPages
	switch {
	case totalPages <= WindowSize:
	case current <= 3:
		last = WindowSize
	case current >= totalPages-2:
		first = totalPages - WindowSize + 1
	default:
		first, last = current-2, current+2
	}

	pages := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pages = append(pages, p)
	}
	return pages
}

// ResultPage is one fetched and formatted page of listings.
type ResultPage[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

func (p ResultPage[T]) TotalPages() int {
	return TotalPages(p.TotalCount, p.PageSize)
}

// Empty reports a successful search with no matches.
func (p ResultPage[T]) Empty() bool {
	return p.TotalCount == 0
}
