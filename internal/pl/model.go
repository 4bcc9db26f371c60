package pl

// Summary is the profit and loss picture of a month range and channel.
// A zero SalesChannelID means all channels combined. Ad spend is not tied to
// channels, so it is reported as zero when a channel filter applies.
type Summary struct {
	FromYM          string  `json:"from_ym"`
	ToYM            string  `json:"to_ym"`
	SalesChannelID  int64   `json:"sales_channel_id,omitempty"`
	Quantity        int     `json:"quantity"`
	SalesExclTax    float64 `json:"sales_excl_tax"`
	Cost            float64 `json:"cost"`
	GrossProfit     float64 `json:"gross_profit"`
	AdSpend         float64 `json:"ad_spend"`
	OperatingProfit float64 `json:"operating_profit"`

	CostRate            float64 `json:"cost_rate"`
	GrossProfitRate     float64 `json:"gross_profit_rate"`
	AdRate              float64 `json:"ad_rate"`
	OperatingProfitRate float64 `json:"operating_profit_rate"`
}

// ProductPL is one product's contribution to the range's profit and loss.
type ProductPL struct {
	ProductCode  string  `json:"product_code"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	SalesExclTax float64 `json:"sales_excl_tax"`
	Cost         float64 `json:"cost"`
	GrossProfit  float64 `json:"gross_profit"`
}

// BudgetComparison pairs actuals with budgets. Ad-side figures are nil when
// a channel filter applies, since ad budgets and expenses carry no channel.
type BudgetComparison struct {
	Summary

	GrossProfitBudget     float64  `json:"gross_profit_budget"`
	AdBudget              *float64 `json:"ad_budget"`
	OperatingProfitBudget *float64 `json:"operating_profit_budget"`

	GrossProfitVariance     float64  `json:"gross_profit_variance"`
	AdVariance              *float64 `json:"ad_variance"`
	OperatingProfitVariance *float64 `json:"operating_profit_variance"`

	GrossProfitAchievementRate     float64  `json:"gross_profit_achievement_rate"`
	AdAchievementRate              *float64 `json:"ad_achievement_rate"`
	OperatingProfitAchievementRate *float64 `json:"operating_profit_achievement_rate"`
}
