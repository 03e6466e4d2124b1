package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalePrice_MarginFormula(t *testing.T) {
	sale, err := SalePrice(150000, 1.0, 0.20)
	require.NoError(t, err)
	assert.Equal(t, 187500, sale)

	// The margin fraction must be recoverable from the result.
	recovered := (float64(sale) - 150000) / float64(sale)
	assert.InDelta(t, 0.20, recovered, 0.001)
}

func TestSalePrice_AppliesExchangeRate(t *testing.T) {
	// 487.50 USD at 900 CLP/USD with 20% margin.
	sale, err := SalePrice(487.50, 900, 0.20)
	require.NoError(t, err)
	assert.Equal(t, 548438, sale) // round(487.50*900/0.8)
}

func TestSalePrice_MonotonicInCost(t *testing.T) {
	prev := 0
	for cost := 1.0; cost < 100000; cost *= 3.7 {
		sale, err := SalePrice(cost, 935.5, 0.20)
		require.NoError(t, err)
		assert.Greater(t, sale, prev, "sale price must grow with cost (cost=%v)", cost)
		prev = sale
	}
}

func TestSalePrice_InvalidInputs(t *testing.T) {
	_, err := SalePrice(0, 900, 0.20)
	assert.Error(t, err)

	_, err = SalePrice(-10, 900, 0.20)
	assert.Error(t, err)

	_, err = SalePrice(100, 900, 1.0)
	assert.Error(t, err)

	_, err = SalePrice(100, 900, -0.1)
	assert.Error(t, err)
}

func TestSalePrice_ZeroMargin(t *testing.T) {
	sale, err := SalePrice(100, 900, 0)
	require.NoError(t, err)
	assert.Equal(t, 90000, sale)
}

func TestCostCLP(t *testing.T) {
	assert.Equal(t, 438750, CostCLP(487.50, 900))
	assert.Equal(t, int(math.Round(12.34*970)), CostCLP(12.34, 970))
}
