package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{" 42", 7, 7},
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, size, def, max int
		wantPage, wantSize   int
	}{
		{0, 0, 20, 100, 1, 20},
		{-3, -1, 20, 100, 1, 20},
		{2, 500, 20, 100, 2, 100},
		{5, 50, 20, 0, 5, 50},
		{3, 7, 20, 100, 3, 7},
	}
	for _, tc := range cases {
		p, s := ClampPage(tc.page, tc.size, tc.def, tc.max)
		if p != tc.wantPage || s != tc.wantSize {
			t.Fatalf("ClampPage(%d,%d,%d,%d) = %d,%d; want %d,%d",
				tc.page, tc.size, tc.def, tc.max, p, s, tc.wantPage, tc.wantSize)
		}
	}
}

func TestOffsetAndTotalPages(t *testing.T) {
	if got := Offset(1, 20); got != 0 {
		t.Fatalf("Offset(1,20) = %d", got)
	}
	if got := Offset(3, 25); got != 50 {
		t.Fatalf("Offset(3,25) = %d", got)
	}
	for _, tc := range []struct {
		total int64
		size  int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{25, 0, 0},
	} {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d,%d) = %d; want %d", tc.total, tc.size, got, tc.want)
		}
	}
}
