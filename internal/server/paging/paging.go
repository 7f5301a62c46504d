// Package paging computes page windows over a record count.
package paging

import (
	"fmt"

	"github.com/dmitrijs2005/simplog/internal/common"
)

// Defaults applied by the transport when a request leaves them out.
const (
	DefaultPage = 1
	DefaultSize = 5
)

var ErrInvalidPageSize = common.NewError(common.ErrorValidation, "page size must be greater than 0")

// OutOfRangeError is returned when the requested page lies past the last one.
type OutOfRangeError struct {
	Page       int
	TotalPages int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("page number (%d) exceeded totalPages (%d)", e.Page, e.TotalPages)
}

func (e *OutOfRangeError) Unwrap() error {
	return common.ErrorValidation
}

// Page describes one window of records.
type Page struct {
	Number     int // 1-based, after normalization
	Size       int
	TotalPages int
	Offset     int
	Limit      int
}

// TotalPages returns ceil(total/size) using integer arithmetic, and 1 when
// total < size so an empty collection still has a (blank) first page.
func TotalPages(total, size int) (int, error) {
	if size <= 0 {
		return 0, ErrInvalidPageSize
	}
	if total < size {
		return 1, nil
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages, nil
}

// Paginate validates the page request against total records. Pages below 1
// are treated as the first page. The window always spans a full page; the
// store returns a short slice for the last one.
func Paginate(total, size, requested int) (Page, error) {
	pages, err := TotalPages(total, size)
	if err != nil {
		return Page{}, err
	}

	if requested <= 0 {
		requested = 1
	} else if requested > pages {
		return Page{}, &OutOfRangeError{Page: requested, TotalPages: pages}
	}

	return Page{
		Number:     requested,
		Size:       size,
		TotalPages: pages,
		Offset:     (requested - 1) * size,
		Limit:      size,
	}, nil
}
