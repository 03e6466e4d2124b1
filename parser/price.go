package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Intcomex price cells mix currency symbols, thousands separators and both
// decimal conventions ("487,50", "$150.000", "$1.234,56"). Everything that is
// not a digit or a separator is noise.
var priceNoise = regexp.MustCompile(`[^0-9.,]`)

// ParsePrice converts a locale-ambiguous price string into a float. The
// second return value is false when the input is empty or not a number;
// callers treat that as a recoverable condition, not an error.
//
// Disambiguation: when both "." and "," appear, the rightmost one is the
// decimal separator and the other marks thousands. A lone separator followed
// by exactly 1-2 trailing digits is decimal; otherwise it marks thousands
// and is stripped.
func ParsePrice(text string) (float64, bool) {
	cleaned := priceNoise.ReplaceAllString(strings.TrimSpace(text), "")
	if cleaned == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// "1.234,56": dots are thousands, comma is decimal.
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// "1,234.56": commas are thousands.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = resolveSingleSeparator(cleaned, ",")
	case lastDot >= 0:
		cleaned = resolveSingleSeparator(cleaned, ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// resolveSingleSeparator decides whether a string with only one separator
// type uses it as decimal ("487,50") or thousands ("1.500.000").
func resolveSingleSeparator(s, sep string) string {
	parts := strings.Split(s, sep)
	if len(parts) == 2 && len(parts[1]) >= 1 && len(parts[1]) <= 2 {
		// Decimal separator: canonicalize to a dot.
		return parts[0] + "." + parts[1]
	}
	return strings.ReplaceAll(s, sep, "")
}
