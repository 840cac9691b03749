package services

import (
	"strconv"

	"rental-intel/models"
)

// phoneFields is the raw_data lookup order. Extraction stops at the first
// field whose value normalizes to a valid number.
var phoneFields = []string{"phone", "phoneNumber", "whatsapp", "contact_phone"}

// hostIDPlatforms are the platforms known to expose a durable per-operator
// identifier. Phone-first marketplaces (expat-dakar and the other local
// sites) are deliberately absent.
var hostIDPlatforms = map[string]bool{
	"airbnb":  true,
	"booking": true,
}

// ExtractPhone returns the listing's normalized phone signal, or "" when no
// raw_data field yields a valid number.
func ExtractPhone(l *models.Listing) string {
	for _, field := range phoneFields {
		v, ok := l.RawData[field]
		if !ok {
			continue
		}
		if phone := NormalizePhone(fieldString(v)); phone != "" {
			return phone
		}
	}
	return ""
}

// ExtractHostKey returns the listing's platform-scoped host identifier in
// "platform:host_id" form, or "" when the platform has no durable host ids
// or the listing carries none.
func ExtractHostKey(l *models.Listing) string {
	if l.HostID == "" || !hostIDPlatforms[l.Platform] {
		return ""
	}
	return l.Platform + ":" + l.HostID
}

// fieldString renders a raw_data value as a string. Scraped payloads
// sometimes carry phone numbers as JSON numbers, which decode as float64.
func fieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
