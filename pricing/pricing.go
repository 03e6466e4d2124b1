// Package pricing converts a parsed USD cost into a CLP sale price under the
// store's currency-conversion-and-margin formula.
package pricing

import (
	"fmt"
	"math"
)

// SalePrice computes round(cost*rate/(1-margin)). Cost is the catalog price
// in USD, rate the CLP-per-USD exchange rate fixed once per run, and margin
// the markup fraction of the sale price. CLP has no fractional units, so the
// result is an integer.
func SalePrice(cost, rate, margin float64) (int, error) {
	if cost <= 0 {
		return 0, fmt.Errorf("pricing: cost must be positive, got %v", cost)
	}
	if margin < 0 || margin >= 1 {
		return 0, fmt.Errorf("pricing: margin must be in [0,1), got %v", margin)
	}
	sale := int(math.Round(cost * rate / (1 - margin)))
	if sale <= 0 {
		return 0, fmt.Errorf("pricing: computed sale price %d is not positive (cost=%v rate=%v)", sale, cost, rate)
	}
	return sale, nil
}

// CostCLP converts a USD cost into CLP at the run's exchange rate, rounded
// to whole pesos. Used for reporting only; SalePrice applies the margin to
// the unrounded value.
func CostCLP(cost, rate float64) int {
	return int(math.Round(cost * rate))
}
