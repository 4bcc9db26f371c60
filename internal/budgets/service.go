package budgets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rinori/backoffice/internal/shared"
)

// Service wraps budget planning business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListMonthly(ctx context.Context, fromYM, toYM string) ([]MonthlyBudget, error) {
	if !shared.ValidYM(fromYM) || !shared.ValidYM(toYM) || toYM < fromYM {
		return nil, shared.ErrInvalidPeriod
	}
	return s.repo.ListMonthly(ctx, fromYM, toYM)
}

// SaveMonthly upserts one budget row per (product, month) in the plans.
// Sales, cost and gross profit are derived from the product master at save
// time. Plans for unknown product codes are skipped. Returns the number of
// rows written.
func (s *Service) SaveMonthly(ctx context.Context, plans []Plan) (int, error) {
	if len(plans) == 0 {
		return 0, errors.New("at least one budget plan is required")
	}

	codes := make([]string, 0, len(plans))
	for i := range plans {
		plans[i].ProductCode = strings.ToUpper(strings.TrimSpace(plans[i].ProductCode))
		if plans[i].ProductCode == "" {
			return 0, errors.New("product code is required")
		}
		for ym, qty := range plans[i].MonthlyQty {
			if !shared.ValidYM(ym) {
				return 0, fmt.Errorf("budget month %q: %w", ym, shared.ErrInvalidPeriod)
			}
			if qty < 0 {
				return 0, fmt.Errorf("budget quantity for %s %s must not be negative", plans[i].ProductCode, ym)
			}
		}
		codes = append(codes, plans[i].ProductCode)
	}

	pricing, err := s.repo.ProductPricing(ctx, codes)
	if err != nil {
		return 0, err
	}

	var items []MonthlyBudget
	for _, plan := range plans {
		p, ok := pricing[plan.ProductCode]
		if !ok {
			continue
		}
		months := make([]string, 0, len(plan.MonthlyQty))
		for ym := range plan.MonthlyQty {
			months = append(months, ym)
		}
		sort.Strings(months)
		for _, ym := range months {
			qty := plan.MonthlyQty[ym]
			sales := float64(qty) * p.SalesPriceExclTax
			cost := float64(qty) * p.CostExclTax
			items = append(items, MonthlyBudget{
				ProductCode:        plan.ProductCode,
				PeriodYM:           ym,
				BudgetQuantity:     qty,
				BudgetSalesExclTax: sales,
				BudgetCostExclTax:  cost,
				BudgetGrossProfit:  sales - cost,
			})
		}
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.repo.UpsertMonthly(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Service) ListAd(ctx context.Context, periodYM string) ([]AdBudget, error) {
	if !shared.ValidYM(periodYM) {
		return nil, shared.ErrInvalidPeriod
	}
	return s.repo.ListAd(ctx, periodYM)
}

// SaveAd upserts the month's per-category ad budgets.
func (s *Service) SaveAd(ctx context.Context, periodYM string, items []AdBudget) (int, error) {
	if !shared.ValidYM(periodYM) {
		return 0, shared.ErrInvalidPeriod
	}
	if len(items) == 0 {
		return 0, errors.New("at least one ad budget is required")
	}
	for i := range items {
		items[i].PeriodYM = periodYM
		if items[i].AdCategoryID <= 0 {
			return 0, errors.New("ad category is required")
		}
		if items[i].Amount < 0 {
			return 0, errors.New("amount must not be negative")
		}
	}
	if err := s.repo.UpsertAd(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// VsActual builds the budget-versus-actual report for managed products over
// the range. Products with neither budget nor actuals are left out; the
// channel filter applies to actuals only, since budgets carry no channel.
func (s *Service) VsActual(ctx context.Context, fromYM, toYM string, channelID int64) (*VsActualReport, error) {
	if !shared.ValidYM(fromYM) || !shared.ValidYM(toYM) || toYM < fromYM {
		return nil, shared.ErrInvalidPeriod
	}

	products, err := s.repo.ManagedProducts(ctx)
	if err != nil {
		return nil, err
	}
	budget, err := s.repo.BudgetByProduct(ctx, fromYM, toYM)
	if err != nil {
		return nil, err
	}
	actual, err := s.repo.ActualByProduct(ctx, fromYM, toYM, channelID)
	if err != nil {
		return nil, err
	}

	report := &VsActualReport{FromYM: fromYM, ToYM: toYM}
	var totalBudget, totalActual Figures
	for _, p := range products {
		b := budget[p.Code]
		a := actual[p.Code]
		if b.Zero() && a.Zero() {
			continue
		}

		row := VsActualProduct{
			ProductCode:       p.Code,
			ProductName:       p.Name,
			BudgetQuantity:    b.Quantity,
			ActualQuantity:    a.Quantity,
			BudgetSales:       b.Sales,
			ActualSales:       a.Sales,
			BudgetCost:        b.Cost,
			ActualCost:        a.Cost,
			BudgetGrossProfit: b.GrossProfit,
			ActualGrossProfit: a.GrossProfit,
		}
		if b.Quantity > 0 {
			row.QuantityAchievementRate = round1(float64(a.Quantity) / float64(b.Quantity) * 100)
		}
		if b.Sales > 0 {
			row.SalesAchievementRate = round1(a.Sales / b.Sales * 100)
			row.BudgetGrossProfitRate = round1(b.GrossProfit / b.Sales * 100)
		}
		if a.Sales > 0 {
			row.ActualGrossProfitRate = round1(a.GrossProfit / a.Sales * 100)
		}
		if b.GrossProfit > 0 {
			row.GrossProfitAchievementRate = round1(a.GrossProfit / b.GrossProfit * 100)
		}
		report.Products = append(report.Products, row)

		totalBudget.Quantity += b.Quantity
		totalBudget.Sales += b.Sales
		totalBudget.Cost += b.Cost
		totalBudget.GrossProfit += b.GrossProfit
		totalActual.Quantity += a.Quantity
		totalActual.Sales += a.Sales
		totalActual.Cost += a.Cost
		totalActual.GrossProfit += a.GrossProfit
	}

	sum := &report.Summary
	sum.TotalBudgetQuantity = totalBudget.Quantity
	sum.TotalActualQuantity = totalActual.Quantity
	sum.TotalBudgetSales = totalBudget.Sales
	sum.TotalActualSales = totalActual.Sales
	sum.TotalBudgetCost = totalBudget.Cost
	sum.TotalActualCost = totalActual.Cost
	sum.TotalBudgetGrossProfit = totalBudget.GrossProfit
	sum.TotalActualGrossProfit = totalActual.GrossProfit
	if totalBudget.Quantity > 0 {
		sum.TotalQuantityAchievementRate = round1(float64(totalActual.Quantity) / float64(totalBudget.Quantity) * 100)
	}
	if totalBudget.Sales > 0 {
		sum.TotalSalesAchievementRate = round1(totalActual.Sales / totalBudget.Sales * 100)
		sum.TotalBudgetGrossProfitRate = round1(totalBudget.GrossProfit / totalBudget.Sales * 100)
	}
	if totalActual.Sales > 0 {
		sum.TotalActualGrossProfitRate = round1(totalActual.GrossProfit / totalActual.Sales * 100)
	}
	if totalBudget.GrossProfit > 0 {
		sum.TotalGrossProfitAchievementRate = round1(totalActual.GrossProfit / totalBudget.GrossProfit * 100)
	}

	report.HasBudgetData = totalBudget.Quantity > 0 || totalBudget.Sales > 0 || totalBudget.GrossProfit > 0
	return report, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
