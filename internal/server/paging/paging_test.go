package paging

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate_RejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		_, err := Paginate(10, size, 1)
		require.ErrorIs(t, err, common.ErrorValidation)
		assert.Equal(t, "page size must be greater than 0", err.Error())
	}
}

func TestTotalPages_IsCeiling(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for size := 1; size <= 12; size++ {
			got, err := TotalPages(total, size)
			require.NoError(t, err)

			want := (total + size - 1) / size
			if want == 0 {
				want = 1
			}
			assert.Equal(t, want, got, "total=%d size=%d", total, size)
		}
	}
}

func TestTotalPages_Cases(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 5, 1},
		{4, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{10, 5, 2},
		{11, 5, 3},
		{1, 1, 1},
	}
	for _, tt := range tests {
		got, err := TotalPages(tt.total, tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "total=%d size=%d", tt.total, tt.size)
	}
}

func TestPaginate_NormalizesLowPages(t *testing.T) {
	for _, page := range []int{0, -1, -42} {
		p, err := Paginate(12, 5, page)
		require.NoError(t, err)
		assert.Equal(t, Page{Number: 1, Size: 5, TotalPages: 3, Offset: 0, Limit: 5}, p)
	}
}

func TestPaginate_OutOfRange(t *testing.T) {
	_, err := Paginate(12, 5, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, "page number (4) exceeded totalPages (3)", err.Error())

	var oor *OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, 4, oor.Page)
	assert.Equal(t, 3, oor.TotalPages)
}

func TestPaginate_EmptyCollectionFirstPage(t *testing.T) {
	p, err := Paginate(0, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 0, p.Offset)

	_, err = Paginate(0, 5, 2)
	assert.EqualError(t, err, "page number (2) exceeded totalPages (1)")
}

func TestPaginate_Window(t *testing.T) {
	p, err := Paginate(12, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Offset)
	assert.Equal(t, 5, p.Limit, "last page still asks for a full window")
	assert.Equal(t, 3, p.Number)
}
