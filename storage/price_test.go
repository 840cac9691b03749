package storage

import "testing"

func TestParseListingPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$120 night", 120},
		{"$450 for 3 nights", 150},
		{"25,000 CFA", 25000},
		{"$1,200.50", 1200.50},
		{"", 0},
		{"free", 0},
	}

	for _, tt := range tests {
		if got := parseListingPrice(tt.raw); got != tt.want {
			t.Errorf("parseListingPrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}
