package pager

import (
	"reflect"
	"testing"
)

func TestBack(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		start int
		want  Page
	}{
		{"reaches first id", 20, 10, Page{IDs: []int{9, 8, 7, 6, 5, 4, 3, 2, 1}, Next: 10}},
		{"full window", 100, 100, Page{IDs: []int{99, 98, 97, 96, 95, 94, 93, 92, 91}, Next: 100, Back: 90}},
		{"start past limit", 50, 80, Page{IDs: []int{50, 49, 48, 47, 46, 45, 44, 43, 42}, Back: 41}},
		{"short page", 20, 4, Page{IDs: []int{3, 2, 1}, Next: 4}},
		{"nothing older", 20, 1, Page{IDs: []int{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.limit).Back(tt.start)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Back(%d) = %+v, want %+v", tt.start, got, tt.want)
			}
		})
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		start int
		want  Page
	}{
		{"stops at limit", 5, 1, Page{IDs: []int{5, 4, 3, 2, 1}}},
		{"middle", 30, 10, Page{IDs: []int{18, 17, 16, 15, 14, 13, 12, 11, 10}, Next: 19, Back: 9}},
		{"last page", 30, 25, Page{IDs: []int{30, 29, 28, 27, 26, 25}, Back: 24}},
		{"clamps zero", 30, 0, Page{IDs: []int{9, 8, 7, 6, 5, 4, 3, 2, 1}, Next: 10}},
		{"beyond limit", 30, 31, Page{IDs: []int{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.limit).Next(tt.start)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Next(%d) = %+v, want %+v", tt.start, got, tt.want)
			}
		})
	}
}

func TestWithSize(t *testing.T) {
	got := New(20).WithSize(10).Back(21)
	if len(got.IDs) != 10 || got.IDs[0] != 20 || got.Back != 10 || got.HasNext() {
		t.Errorf("Back with size 10 = %+v", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	p := New(40)
	first := p.Back(40)
	if !first.HasBack() || !first.HasNext() {
		t.Fatalf("first page cursors = %+v", first)
	}

	older := p.Older(first.Back)
	if older.IDs[0] != first.IDs[len(first.IDs)-1]-1 {
		t.Errorf("older page starts at %d, want %d", older.IDs[0], first.IDs[len(first.IDs)-1]-1)
	}
	back := p.Newer(older.Next)
	if !reflect.DeepEqual(back, first) {
		t.Errorf("Newer(Older(first)) = %+v, want %+v", back, first)
	}
}

func TestPagesStayInRange(t *testing.T) {
	for limit := 0; limit <= 25; limit++ {
		p := New(limit)
		for start := -2; start <= limit+3; start++ {
			for _, page := range []Page{p.Back(start), p.Next(start)} {
				for _, id := range page.IDs {
					if id <= 0 || id > limit {
						t.Fatalf("limit %d start %d: id %d out of range", limit, start, id)
					}
				}
				if page.HasNext() && page.Next > limit {
					t.Fatalf("limit %d start %d: next cursor %d beyond limit", limit, start, page.Next)
				}
			}
		}
	}
}
