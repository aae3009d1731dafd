package shared

import "testing"

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)
	if p.Page != 1 || p.PerPage != 20 {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages got %d", p.TotalPages)
	}
}

func TestPaginationBounds(t *testing.T) {
	cases := []struct {
		page, perPage, total int
		from, to             int
	}{
		{1, 10, 25, 0, 10},
		{3, 10, 25, 20, 25},
		{4, 10, 25, 0, 0}, // past the end
		{1, 10, 0, 0, 0},
	}
	for _, tc := range cases {
		p := NewPagination(tc.page, tc.perPage, tc.total)
		from, to := p.Bounds()
		if from != tc.from || to != tc.to {
			t.Fatalf("page=%d perPage=%d total=%d: got [%d,%d) want [%d,%d)",
				tc.page, tc.perPage, tc.total, from, to, tc.from, tc.to)
		}
	}
}
