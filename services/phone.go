package services

import "strings"

// countryCode is prefixed to every normalized number.
const countryCode = "+221"

// NormalizePhone canonicalizes a free-text phone string into +221XXXXXXXXX
// form. It returns "" when the input does not reduce to a valid local mobile
// number — that is absence of a signal, not an error. The function is pure
// and total: every input produces a defined result.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// Strip international prefixes or the trunk zero, in that order.
	switch {
	case strings.HasPrefix(digits, "00221"):
		digits = digits[5:]
	case strings.HasPrefix(digits, "221"):
		digits = digits[3:]
	case strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}

	// Valid numbers: exactly 9 digits starting with 7 (mobile) or 3 (fixed).
	if len(digits) != 9 {
		return ""
	}
	if digits[0] != '7' && digits[0] != '3' {
		return ""
	}

	return countryCode + digits
}
