package storage

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// priceRegexp captures numeric price values
	priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// nightsRegexp captures explicit "for X nights" totals. A bare
	// "$120 night" is already per-night and must not be divided.
	nightsRegexp = regexp.MustCompile(`for\s+(\d+)\s*nights?`)
)

// parseListingPrice extracts a per-night price from a raw scraped string.
// Multi-night totals ("$450 for 3 nights") are divided down to the nightly
// rate. Unparseable input yields 0.
func parseListingPrice(raw string) float64 {
	raw = strings.ToLower(raw)

	cleaned := strings.ReplaceAll(raw, ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}

	total, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}

	if nightsMatch := nightsRegexp.FindStringSubmatch(raw); len(nightsMatch) >= 2 {
		nights, err := strconv.Atoi(nightsMatch[1])
		if err == nil && nights > 1 {
			return total / float64(nights)
		}
	}

	return total
}
