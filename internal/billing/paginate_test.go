package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate_LastPartialPage(t *testing.T) {
	items := seq(23)

	got, p := Paginate(items, 3, 10)

	assert.Equal(t, []int{21, 22, 23}, got)
	assert.Equal(t, Pagination{Page: 3, PerPage: 10, TotalItems: 23, TotalPages: 3}, p)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestPaginate_PagesPartitionInput(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 23, 40} {
		items := seq(n)
		_, first := Paginate(items, 1, 10)

		var all []int
		for page := 1; page <= first.TotalPages; page++ {
			got, _ := Paginate(items, page, 10)
			assert.LessOrEqual(t, len(got), 10)
			all = append(all, got...)
		}
		if n == 0 {
			assert.Empty(t, all)
			continue
		}
		assert.Equal(t, items, all, "n=%d", n)
	}
}

func TestPaginate_ClampsOutOfRangePages(t *testing.T) {
	items := seq(23)

	got, p := Paginate(items, 99, 10)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, []int{21, 22, 23}, got)

	got, p = Paginate(items, -4, 10)
	assert.Equal(t, 1, p.Page)
	assert.Len(t, got, 10)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
}

func TestPaginate_EmptyAndDefaultSize(t *testing.T) {
	got, p := Paginate([]string{}, 5, 0)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, Pagination{Page: 1, PerPage: DefaultPageSize, TotalItems: 0, TotalPages: 0}, p)
	assert.False(t, p.HasNext())
}
