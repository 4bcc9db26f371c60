package pl

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/shared"
)

// Repository defines the aggregation queries behind profit and loss views.
// All ranges are inclusive [fromYM, toYM]; channelID 0 means all channels.
// Only managed products count toward sales figures.
type Repository interface {
	Totals(ctx context.Context, fromYM, toYM string, channelID int64) (*Summary, error)
	// ProductBreakdown groups the range's records by product, largest sales
	// first.
	ProductBreakdown(ctx context.Context, fromYM, toYM string, channelID int64) ([]ProductPL, error)
	// AdSpendTotal sums ad expenses dated within the range. Expenses carry no
	// channel, so there is no channel parameter.
	AdSpendTotal(ctx context.Context, fromYM, toYM string) (float64, error)
	// GrossProfitBudget sums managed products' budgeted gross profit over the
	// range.
	GrossProfitBudget(ctx context.Context, fromYM, toYM string) (float64, error)
	// AdBudgetTotal sums ad budgets over the range.
	AdBudgetTotal(ctx context.Context, fromYM, toYM string) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Totals(ctx context.Context, fromYM, toYM string, channelID int64) (*Summary, error) {
	const query = `
		SELECT COALESCE(SUM(sr.quantity), 0),
		       COALESCE(SUM(sr.sales_amount_excl_tax), 0),
		       COALESCE(SUM(sr.cost_amount), 0),
		       COALESCE(SUM(sr.gross_profit_amount), 0)
		FROM sales_records sr
		JOIN products p ON p.product_code = sr.product_code AND p.management_status = 'managed'
		WHERE sr.target_ym >= $1 AND sr.target_ym <= $2
		  AND ($3 = 0 OR sr.sales_channel_id = $3)`

	s := Summary{FromYM: fromYM, ToYM: toYM, SalesChannelID: channelID}
	err := r.pool.QueryRow(ctx, query, fromYM, toYM, channelID).
		Scan(&s.Quantity, &s.SalesExclTax, &s.Cost, &s.GrossProfit)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ProductBreakdown(ctx context.Context, fromYM, toYM string, channelID int64) ([]ProductPL, error) {
	const query = `
		SELECT sr.product_code,
		       COALESCE(p.product_name, sr.product_code),
		       SUM(sr.quantity),
		       SUM(sr.sales_amount_excl_tax),
		       SUM(sr.cost_amount),
		       SUM(sr.gross_profit_amount)
		FROM sales_records sr
		LEFT JOIN products p ON p.product_code = sr.product_code
		WHERE sr.target_ym >= $1 AND sr.target_ym <= $2
		  AND ($3 = 0 OR sr.sales_channel_id = $3)
		GROUP BY sr.product_code, p.product_name
		ORDER BY SUM(sr.sales_amount_excl_tax) DESC`

	rows, err := r.pool.Query(ctx, query, fromYM, toYM, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProductPL
	for rows.Next() {
		var p ProductPL
		if err := rows.Scan(&p.ProductCode, &p.ProductName, &p.Quantity, &p.SalesExclTax, &p.Cost, &p.GrossProfit); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) AdSpendTotal(ctx context.Context, fromYM, toYM string) (float64, error) {
	start, _, err := shared.MonthBounds(fromYM)
	if err != nil {
		return 0, err
	}
	_, next, err := shared.MonthBounds(toYM)
	if err != nil {
		return 0, err
	}

	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM ad_expenses
		WHERE expense_date >= $1 AND expense_date < $2`

	var total float64
	if err := r.pool.QueryRow(ctx, query, start, next).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) GrossProfitBudget(ctx context.Context, fromYM, toYM string) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(mb.budget_gross_profit), 0)
		FROM monthly_budgets mb
		JOIN products p ON p.product_code = mb.product_code AND p.management_status = 'managed'
		WHERE mb.period_ym >= $1 AND mb.period_ym <= $2`

	var total float64
	if err := r.pool.QueryRow(ctx, query, fromYM, toYM).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) AdBudgetTotal(ctx context.Context, fromYM, toYM string) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM ad_budgets
		WHERE period_ym >= $1 AND period_ym <= $2`

	var total float64
	if err := r.pool.QueryRow(ctx, query, fromYM, toYM).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
