package services

import (
	"testing"

	"rental-intel/models"
)

func TestExtractPhoneFieldPriority(t *testing.T) {
	l := &models.Listing{RawData: map[string]any{
		"phone":       "not a number",
		"phoneNumber": "77 111 11 11",
		"whatsapp":    "77 222 22 22",
	}}

	// "phone" is tried first but invalid; "phoneNumber" wins over "whatsapp".
	if got := ExtractPhone(l); got != "+221771111111" {
		t.Errorf("ExtractPhone = %q; want +221771111111", got)
	}
}

func TestExtractPhoneFirstValidWins(t *testing.T) {
	l := &models.Listing{RawData: map[string]any{
		"phone":    "0771234567",
		"whatsapp": "0779999999",
	}}

	if got := ExtractPhone(l); got != "+221771234567" {
		t.Errorf("ExtractPhone = %q; want +221771234567", got)
	}
}

func TestExtractPhoneNumericValue(t *testing.T) {
	// JSON numbers decode as float64; the extractor must still read them.
	l := &models.Listing{RawData: map[string]any{"phone": float64(771234567)}}

	if got := ExtractPhone(l); got != "+221771234567" {
		t.Errorf("ExtractPhone = %q; want +221771234567", got)
	}
}

func TestExtractPhoneNoSignal(t *testing.T) {
	tests := []struct {
		name string
		l    *models.Listing
	}{
		{"nil raw data", &models.Listing{}},
		{"empty raw data", &models.Listing{RawData: map[string]any{}}},
		{"all invalid", &models.Listing{RawData: map[string]any{
			"phone": "123", "contact_phone": "991234567",
		}}},
	}

	for _, tt := range tests {
		if got := ExtractPhone(tt.l); got != "" {
			t.Errorf("%s: ExtractPhone = %q; want no signal", tt.name, got)
		}
	}
}

func TestExtractHostKey(t *testing.T) {
	tests := []struct {
		name string
		l    *models.Listing
		want string
	}{
		{"airbnb host", &models.Listing{Platform: "airbnb", HostID: "12345"}, "airbnb:12345"},
		{"booking host", &models.Listing{Platform: "booking", HostID: "h-9"}, "booking:h-9"},
		{"no host id", &models.Listing{Platform: "airbnb"}, ""},
		{"platform without durable ids", &models.Listing{Platform: "expat-dakar", HostID: "77"}, ""},
	}

	for _, tt := range tests {
		if got := ExtractHostKey(tt.l); got != tt.want {
			t.Errorf("%s: ExtractHostKey = %q; want %q", tt.name, got, tt.want)
		}
	}
}
