package budgets

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinori/backoffice/internal/platform/db"
)

// Repository defines persistence operations for product and ad budgets.
type Repository interface {
	ListMonthly(ctx context.Context, fromYM, toYM string) ([]MonthlyBudget, error)
	// UpsertMonthly writes the batch in one transaction, keyed by
	// (product_code, period_ym).
	UpsertMonthly(ctx context.Context, items []MonthlyBudget) error
	// ProductPricing resolves unit price and cost for the given codes.
	// Unknown codes are absent from the result.
	ProductPricing(ctx context.Context, codes []string) (map[string]Pricing, error)

	ListAd(ctx context.Context, periodYM string) ([]AdBudget, error)
	// UpsertAd writes the month's category budgets in one transaction, keyed
	// by (period_ym, ad_category_id).
	UpsertAd(ctx context.Context, items []AdBudget) error

	// BudgetByProduct sums monthly budgets per product over the range.
	BudgetByProduct(ctx context.Context, fromYM, toYM string) (map[string]Figures, error)
	// ActualByProduct sums sales records per product over the range.
	// channelID 0 means all channels.
	ActualByProduct(ctx context.Context, fromYM, toYM string, channelID int64) (map[string]Figures, error)
	// ManagedProducts lists managed products ordered by code.
	ManagedProducts(ctx context.Context) ([]ManagedProduct, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListMonthly(ctx context.Context, fromYM, toYM string) ([]MonthlyBudget, error) {
	const query = `
		SELECT id, product_code, period_ym, budget_quantity, budget_sales_excl_tax,
		       budget_cost_excl_tax, budget_gross_profit, created_at, updated_at
		FROM monthly_budgets
		WHERE period_ym >= $1 AND period_ym <= $2
		ORDER BY product_code, period_ym`

	rows, err := r.pool.Query(ctx, query, fromYM, toYM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthlyBudget
	for rows.Next() {
		var b MonthlyBudget
		if err := rows.Scan(&b.ID, &b.ProductCode, &b.PeriodYM, &b.BudgetQuantity,
			&b.BudgetSalesExclTax, &b.BudgetCostExclTax, &b.BudgetGrossProfit,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *repository) UpsertMonthly(ctx context.Context, items []MonthlyBudget) error {
	const query = `
		INSERT INTO monthly_budgets
			(product_code, period_ym, budget_quantity, budget_sales_excl_tax,
			 budget_cost_excl_tax, budget_gross_profit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (product_code, period_ym) DO UPDATE
		SET budget_quantity = EXCLUDED.budget_quantity,
		    budget_sales_excl_tax = EXCLUDED.budget_sales_excl_tax,
		    budget_cost_excl_tax = EXCLUDED.budget_cost_excl_tax,
		    budget_gross_profit = EXCLUDED.budget_gross_profit,
		    updated_at = EXCLUDED.updated_at`

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, b := range items {
			if _, err := tx.Exec(ctx, query, b.ProductCode, b.PeriodYM, b.BudgetQuantity,
				b.BudgetSalesExclTax, b.BudgetCostExclTax, b.BudgetGrossProfit, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ProductPricing(ctx context.Context, codes []string) (map[string]Pricing, error) {
	const query = `
		SELECT product_code, sales_price_excl_tax, cost_excl_tax
		FROM products
		WHERE product_code = ANY($1)`

	rows, err := r.pool.Query(ctx, query, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]Pricing, len(codes))
	for rows.Next() {
		var (
			code string
			p    Pricing
		)
		if err := rows.Scan(&code, &p.SalesPriceExclTax, &p.CostExclTax); err != nil {
			return nil, err
		}
		result[code] = p
	}
	return result, rows.Err()
}

func (r *repository) ListAd(ctx context.Context, periodYM string) ([]AdBudget, error) {
	const query = `
		SELECT b.id, b.period_ym, b.ad_category_id, c.name, b.amount, b.created_at, b.updated_at
		FROM ad_budgets b
		JOIN ad_categories c ON c.id = b.ad_category_id
		WHERE b.period_ym = $1
		ORDER BY b.ad_category_id`

	rows, err := r.pool.Query(ctx, query, periodYM)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AdBudget
	for rows.Next() {
		var b AdBudget
		if err := rows.Scan(&b.ID, &b.PeriodYM, &b.AdCategoryID, &b.CategoryName,
			&b.Amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *repository) UpsertAd(ctx context.Context, items []AdBudget) error {
	const query = `
		INSERT INTO ad_budgets (period_ym, ad_category_id, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (period_ym, ad_category_id) DO UPDATE
		SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, b := range items {
			if _, err := tx.Exec(ctx, query, b.PeriodYM, b.AdCategoryID, b.Amount, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) BudgetByProduct(ctx context.Context, fromYM, toYM string) (map[string]Figures, error) {
	const query = `
		SELECT product_code,
		       COALESCE(SUM(budget_quantity), 0),
		       COALESCE(SUM(budget_sales_excl_tax), 0),
		       COALESCE(SUM(budget_cost_excl_tax), 0),
		       COALESCE(SUM(budget_gross_profit), 0)
		FROM monthly_budgets
		WHERE period_ym >= $1 AND period_ym <= $2
		GROUP BY product_code`

	return r.figuresByProduct(ctx, query, fromYM, toYM)
}

func (r *repository) ActualByProduct(ctx context.Context, fromYM, toYM string, channelID int64) (map[string]Figures, error) {
	const query = `
		SELECT product_code,
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(sales_amount_excl_tax), 0),
		       COALESCE(SUM(cost_amount), 0),
		       COALESCE(SUM(gross_profit_amount), 0)
		FROM sales_records
		WHERE target_ym >= $1 AND target_ym <= $2 AND ($3 = 0 OR sales_channel_id = $3)
		GROUP BY product_code`

	return r.figuresByProduct(ctx, query, fromYM, toYM, channelID)
}

func (r *repository) figuresByProduct(ctx context.Context, query string, args ...any) (map[string]Figures, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]Figures)
	for rows.Next() {
		var (
			code string
			f    Figures
		)
		if err := rows.Scan(&code, &f.Quantity, &f.Sales, &f.Cost, &f.GrossProfit); err != nil {
			return nil, err
		}
		result[code] = f
	}
	return result, rows.Err()
}

func (r *repository) ManagedProducts(ctx context.Context) ([]ManagedProduct, error) {
	const query = `
		SELECT product_code, product_name
		FROM products
		WHERE management_status = 'managed'
		ORDER BY product_code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ManagedProduct
	for rows.Next() {
		var p ManagedProduct
		if err := rows.Scan(&p.Code, &p.Name); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
