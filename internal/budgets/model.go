package budgets

import "time"

// MonthlyBudget plans one product's sales for one month. The amount columns
// are derived from the product master's unit price and cost at save time, so
// later master edits do not rewrite past plans.
type MonthlyBudget struct {
	ID                 int64     `json:"id"`
	ProductCode        string    `json:"product_code"`
	PeriodYM           string    `json:"period_ym"`
	BudgetQuantity     int       `json:"budget_quantity"`
	BudgetSalesExclTax float64   `json:"budget_sales_excl_tax"`
	BudgetCostExclTax  float64   `json:"budget_cost_excl_tax"`
	BudgetGrossProfit  float64   `json:"budget_gross_profit"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Plan is one product's monthly quantities within a save request.
type Plan struct {
	ProductCode string
	MonthlyQty  map[string]int
}

// AdBudget plans one ad category's spend for one month.
type AdBudget struct {
	ID           int64     `json:"id"`
	PeriodYM     string    `json:"period_ym"`
	AdCategoryID int64     `json:"ad_category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Pricing is the product master data budget amounts derive from.
type Pricing struct {
	SalesPriceExclTax float64
	CostExclTax       float64
}

// ManagedProduct is a managed product's identity within the vs-actual report.
type ManagedProduct struct {
	Code string
	Name string
}

// Figures is one side (budget or actual) of a product's vs-actual row.
type Figures struct {
	Quantity    int
	Sales       float64
	Cost        float64
	GrossProfit float64
}

// Zero reports whether every figure is zero.
func (f Figures) Zero() bool {
	return f.Quantity == 0 && f.Sales == 0 && f.Cost == 0 && f.GrossProfit == 0
}

// VsActualProduct compares one product's budget with its actuals. Rates are
// percentages rounded to one decimal.
type VsActualProduct struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`

	BudgetQuantity          int     `json:"budget_quantity"`
	ActualQuantity          int     `json:"actual_quantity"`
	QuantityAchievementRate float64 `json:"quantity_achievement_rate"`

	BudgetSales          float64 `json:"budget_sales"`
	ActualSales          float64 `json:"actual_sales"`
	SalesAchievementRate float64 `json:"sales_achievement_rate"`

	BudgetCost float64 `json:"budget_cost"`
	ActualCost float64 `json:"actual_cost"`

	BudgetGrossProfit          float64 `json:"budget_gross_profit"`
	ActualGrossProfit          float64 `json:"actual_gross_profit"`
	BudgetGrossProfitRate      float64 `json:"budget_gross_profit_rate"`
	ActualGrossProfitRate      float64 `json:"actual_gross_profit_rate"`
	GrossProfitAchievementRate float64 `json:"gross_profit_achievement_rate"`
}

// VsActualSummary totals the report across products.
type VsActualSummary struct {
	TotalBudgetQuantity          int     `json:"total_budget_quantity"`
	TotalActualQuantity          int     `json:"total_actual_quantity"`
	TotalQuantityAchievementRate float64 `json:"total_quantity_achievement_rate"`

	TotalBudgetSales          float64 `json:"total_budget_sales"`
	TotalActualSales          float64 `json:"total_actual_sales"`
	TotalSalesAchievementRate float64 `json:"total_sales_achievement_rate"`

	TotalBudgetCost float64 `json:"total_budget_cost"`
	TotalActualCost float64 `json:"total_actual_cost"`

	TotalBudgetGrossProfit          float64 `json:"total_budget_gross_profit"`
	TotalActualGrossProfit          float64 `json:"total_actual_gross_profit"`
	TotalBudgetGrossProfitRate      float64 `json:"total_budget_gross_profit_rate"`
	TotalActualGrossProfitRate      float64 `json:"total_actual_gross_profit_rate"`
	TotalGrossProfitAchievementRate float64 `json:"total_gross_profit_achievement_rate"`
}

// VsActualReport is the budget-versus-actual view over a month range.
type VsActualReport struct {
	FromYM        string            `json:"from_ym"`
	ToYM          string            `json:"to_ym"`
	Products      []VsActualProduct `json:"products"`
	Summary       VsActualSummary   `json:"summary"`
	HasBudgetData bool              `json:"has_budget_data"`
}
