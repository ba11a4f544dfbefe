package chingus

import "testing"

func TestParsePage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page, limit string
		want        Page
	}{
		{"", "", Page{Number: 1, Limit: 20}},
		{"-5", "10", Page{Number: 1, Limit: 10}},
		{"0", "10", Page{Number: 1, Limit: 10}},
		{"3", "5000", Page{Number: 3, Limit: 100}},
		{"abc", "xyz", Page{Number: 1, Limit: 20}},
		{"2", "0", Page{Number: 2, Limit: 1}},
		{"2", "-4", Page{Number: 2, Limit: 1}},
		{" 4 ", " 25 ", Page{Number: 4, Limit: 25}},
		{"1.5", "2.5", Page{Number: 1, Limit: 20}},
		{"99999999999999999999999", "", Page{Number: 1, Limit: 20}},
		{"9223372036854775807", "20", Page{Number: MaxPage, Limit: 20}},
	}
	for _, tc := range cases {
		if got := ParsePage(tc.page, tc.limit); got != tc.want {
			t.Fatalf("ParsePage(%q,%q)=%+v, want %+v", tc.page, tc.limit, got, tc.want)
		}
	}
}

func TestPage_Offset(t *testing.T) {
	t.Parallel()

	if got := (Page{Number: 3, Limit: 20}).Offset(); got != 40 {
		t.Fatalf("Offset()=%d, want 40", got)
	}
	if got := (Page{Number: 1, Limit: 20}).Offset(); got != 0 {
		t.Fatalf("Offset()=%d, want 0", got)
	}
	if got := ParsePage("9223372036854775807", "1000").Offset(); got <= 0 {
		t.Fatalf("Offset() for the largest page=%d, want positive", got)
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{10, 1, 10},
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{1000, 100, 10},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("TotalPages(%d,%d)=%d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
