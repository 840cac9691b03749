package services

import "testing"

func TestNormalizePhoneCanonicalForms(t *testing.T) {
	// Every spelling of the same number reduces to one identity key.
	want := "+221771234567"
	inputs := []string{
		"+221771234567",
		"00221771234567",
		"221771234567",
		"0771234567",
		"771234567",
		"77 123 45 67",
		"(+221) 77-123-45-67",
	}

	for _, in := range inputs {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestNormalizePhoneFixedLine(t *testing.T) {
	if got := NormalizePhone("338491234"); got != "+221338491234" {
		t.Errorf("NormalizePhone(338491234) = %q; want +221338491234", got)
	}
}

func TestNormalizePhoneRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too short", "123"},
		{"too long", "7712345678"},
		{"invalid prefix 9", "221991234567"},
		{"invalid prefix 1", "112345678"},
		{"no digits", "call me"},
		{"eight digits after strip", "07712345"},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != "" {
			t.Errorf("%s: NormalizePhone(%q) = %q; want no signal", tt.name, tt.in, got)
		}
	}
}

func TestNormalizePhoneIsTotal(t *testing.T) {
	// Junk input must resolve to "no signal", never panic.
	for _, in := range []string{"\x00\xff", "☎ 77", "0", "00221", "221"} {
		_ = NormalizePhone(in)
	}
}
