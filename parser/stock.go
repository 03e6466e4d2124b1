package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

var (
	morePhrases    = []string{"más de", "mas de", "more than", "mayor a", "mayor que"}
	negativeHints  = []string{"sin stock", "sin existencia", "agotado", "no disponible", "out of stock"}
	availableHints = []string{"disponible", "available", "en stock", "in stock", "en inventario"}
)

// ParseStock extracts a stock quantity from the exporter's free-text
// availability column ("11 en inventario", "Más de 20", "Sin stock").
//
// The first contiguous run of digits wins. A "más de N" phrasing yields N+1:
// "more than 20" strictly means at least 21. Text that signals availability
// without a number yields 1. Everything else, including empty input, yields
// 0. ParseStock never fails.
func ParseStock(text string) int {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return 0
	}

	if match := digitRun.FindString(lowered); match != "" {
		n, err := strconv.Atoi(match)
		if err != nil {
			return 0
		}
		for _, phrase := range morePhrases {
			if strings.Contains(lowered, phrase) {
				return n + 1
			}
		}
		return n
	}

	for _, hint := range negativeHints {
		if strings.Contains(lowered, hint) {
			return 0
		}
	}
	for _, hint := range availableHints {
		if strings.Contains(lowered, hint) {
			return 1
		}
	}
	return 0
}
