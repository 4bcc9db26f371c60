package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcAmounts(t *testing.T) {
	// 10 units at 500 yen cost, 55,000 yen tax inclusive at 10%.
	got := CalcAmounts(55000, 10, 0.10, 500)
	assert.Equal(t, 50000.0, got.SalesExclTax)
	assert.Equal(t, 5000.0, got.Cost)
	assert.Equal(t, 45000.0, got.GrossProfit)
}

func TestCalcAmountsRoundsToWholeYen(t *testing.T) {
	// 1,000 / 1.1 = 909.09... rounds to 909.
	got := CalcAmounts(1000, 1, 0.10, 333.4)
	assert.Equal(t, 909.0, got.SalesExclTax)
	assert.Equal(t, 333.0, got.Cost)
	assert.Equal(t, 576.0, got.GrossProfit)
}

func TestCalcAmountsEightPercent(t *testing.T) {
	got := CalcAmounts(10800, 2, 0.08, 2000)
	assert.Equal(t, 10000.0, got.SalesExclTax)
	assert.Equal(t, 4000.0, got.Cost)
	assert.Equal(t, 6000.0, got.GrossProfit)
}

func TestCalcAmountsZeroRate(t *testing.T) {
	got := CalcAmounts(5000, 1, 0, 1000)
	assert.Equal(t, 5000.0, got.SalesExclTax)
	assert.Equal(t, 1000.0, got.Cost)
	assert.Equal(t, 4000.0, got.GrossProfit)
}
