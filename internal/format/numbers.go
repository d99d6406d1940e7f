package format

import (
	"strings"
)

// normalizeNumber lowercases radix prefixes, exponent markers, and the
// imaginary suffix, then uppercases hex digits.
func normalizeNumber(text string) string {
	s := strings.ToLower(text)
	if strings.HasPrefix(s, "0x") {
		return "0x" + strings.ToUpper(s[2:])
	}
	return s
}
