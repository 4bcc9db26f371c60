package importer

import "math"

// Amounts carries the derived money figures for one sales record, in yen.
type Amounts struct {
	SalesExclTax float64
	Cost         float64
	GrossProfit  float64
}

// CalcAmounts derives tax-exclusive sales, cost and gross profit from a
// tax-inclusive CSV amount. Each figure is rounded to whole yen before the
// profit subtraction so the stored columns always reconcile.
func CalcAmounts(amountInclTax float64, quantity int, taxRate, unitCostExclTax float64) Amounts {
	salesExcl := math.Round(amountInclTax / (1 + taxRate))
	cost := math.Round(unitCostExclTax * float64(quantity))
	return Amounts{
		SalesExclTax: salesExcl,
		Cost:         cost,
		GrossProfit:  salesExcl - cost,
	}
}
