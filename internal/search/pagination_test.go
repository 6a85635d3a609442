package search_test

import (
	"errors"
	"reflect"
	"testing"

	"topmarketingjobs/internal/search"
)

func TestTotalPages(t *testing.T) {
	cases := []struct{ count, size, want int }{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := search.TotalPages(c.count, c.size); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.count, c.size, got, c.want)
		}
	}
}

func TestGoToPage_Rejects(t *testing.T) {
	for _, requested := range []int{0, -1, 4} {
		got, err := search.GoToPage(2, requested, 3)
		if !errors.Is(err, search.ErrPageOutOfRange) {
			t.Errorf("GoToPage(2, %d, 3) error = %v, want ErrPageOutOfRange", requested, err)
		}
		if got != 2 {
			t.Errorf("GoToPage(2, %d, 3) = %d, want current page 2", requested, got)
		}
	}
}

func TestGoToPage_Accepts(t *testing.T) {
	for _, requested := range []int{1, 2, 3} {
		got, err := search.GoToPage(1, requested, 3)
		if err != nil || got != requested {
			t.Errorf("GoToPage(1, %d, 3) = %d, %v", requested, got, err)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct{ page, total, want int }{
		{1, 0, 1},
		{5, 0, 1},
		{0, 4, 1},
		{3, 4, 3},
		{9, 4, 4},
	}
	for _, c := range cases {
		if got := search.ClampPage(c.page, c.total); got != c.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", c.page, c.total, got, c.want)
		}
	}
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 0, []int{}},
		{1, 3, []int{1, 2, 3}},
		{4, 5, []int{1, 2, 3, 4, 5}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{3, 10, []int{1, 2, 3, 4, 5}},
		{4, 10, []int{2, 3, 4, 5, 6}},
		{7, 10, []int{5, 6, 7, 8, 9}},
		{8, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, c := range cases {
		if got := search.PageWindow(c.current, c.total); !reflect.DeepEqual(got, c.want) {
			t.Errorf("PageWindow(%d, %d) = %v, want %v", c.current, c.total, got, c.want)
		}
	}
}
