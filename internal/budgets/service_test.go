package budgets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinori/backoffice/internal/shared"
)

type mockRepo struct {
	pricing map[string]Pricing
	managed []ManagedProduct
	budget  map[string]Figures
	actual  map[string]Figures

	monthly map[string]MonthlyBudget // keyed "code|ym"
	ad      map[string]AdBudget      // keyed "ym|category"

	actualChannelID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		pricing: map[string]Pricing{},
		budget:  map[string]Figures{},
		actual:  map[string]Figures{},
		monthly: map[string]MonthlyBudget{},
		ad:      map[string]AdBudget{},
	}
}

func (m *mockRepo) ListMonthly(_ context.Context, fromYM, toYM string) ([]MonthlyBudget, error) {
	var out []MonthlyBudget
	for _, b := range m.monthly {
		if b.PeriodYM >= fromYM && b.PeriodYM <= toYM {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockRepo) UpsertMonthly(_ context.Context, items []MonthlyBudget) error {
	for _, b := range items {
		m.monthly[b.ProductCode+"|"+b.PeriodYM] = b
	}
	return nil
}

func (m *mockRepo) ProductPricing(_ context.Context, codes []string) (map[string]Pricing, error) {
	out := map[string]Pricing{}
	for _, code := range codes {
		if p, ok := m.pricing[code]; ok {
			out[code] = p
		}
	}
	return out, nil
}

func (m *mockRepo) ListAd(_ context.Context, periodYM string) ([]AdBudget, error) {
	var out []AdBudget
	for _, b := range m.ad {
		if b.PeriodYM == periodYM {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockRepo) UpsertAd(_ context.Context, items []AdBudget) error {
	for _, b := range items {
		m.ad[fmt.Sprintf("%s|%d", b.PeriodYM, b.AdCategoryID)] = b
	}
	return nil
}

func (m *mockRepo) BudgetByProduct(context.Context, string, string) (map[string]Figures, error) {
	return m.budget, nil
}

func (m *mockRepo) ActualByProduct(_ context.Context, _, _ string, channelID int64) (map[string]Figures, error) {
	m.actualChannelID = channelID
	return m.actual, nil
}

func (m *mockRepo) ManagedProducts(context.Context) ([]ManagedProduct, error) {
	return m.managed, nil
}

func TestServiceSaveMonthlyDerivesAmounts(t *testing.T) {
	repo := newMockRepo()
	repo.pricing["RINO-A"] = Pricing{SalesPriceExclTax: 5000, CostExclTax: 2000}
	svc := NewService(repo)

	saved, err := svc.SaveMonthly(context.Background(), []Plan{
		{ProductCode: "rino-a", MonthlyQty: map[string]int{"2025-06": 10, "2025-07": 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	june := repo.monthly["RINO-A|2025-06"]
	assert.Equal(t, 10, june.BudgetQuantity)
	assert.Equal(t, 50000.0, june.BudgetSalesExclTax)
	assert.Equal(t, 20000.0, june.BudgetCostExclTax)
	assert.Equal(t, 30000.0, june.BudgetGrossProfit)
}

func TestServiceSaveMonthlySkipsUnknownProducts(t *testing.T) {
	repo := newMockRepo()
	repo.pricing["RINO-A"] = Pricing{SalesPriceExclTax: 100, CostExclTax: 40}
	svc := NewService(repo)

	saved, err := svc.SaveMonthly(context.Background(), []Plan{
		{ProductCode: "RINO-A", MonthlyQty: map[string]int{"2025-06": 1}},
		{ProductCode: "GHOST-1", MonthlyQty: map[string]int{"2025-06": 9}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.NotContains(t, repo.monthly, "GHOST-1|2025-06")
}

func TestServiceSaveMonthlyValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.SaveMonthly(context.Background(), nil)
	assert.Error(t, err)

	_, err = svc.SaveMonthly(context.Background(), []Plan{
		{ProductCode: "RINO-A", MonthlyQty: map[string]int{"202506": 1}},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)

	_, err = svc.SaveMonthly(context.Background(), []Plan{
		{ProductCode: "RINO-A", MonthlyQty: map[string]int{"2025-06": -1}},
	})
	assert.Error(t, err)
}

func TestServiceSaveAd(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	saved, err := svc.SaveAd(context.Background(), "2025-06", []AdBudget{
		{AdCategoryID: 1, Amount: 50000},
		{AdCategoryID: 2, Amount: 30000},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	_, err = svc.SaveAd(context.Background(), "junk", []AdBudget{{AdCategoryID: 1}})
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)

	_, err = svc.SaveAd(context.Background(), "2025-06", []AdBudget{{AdCategoryID: 0}})
	assert.Error(t, err)

	_, err = svc.SaveAd(context.Background(), "2025-06", []AdBudget{{AdCategoryID: 1, Amount: -5}})
	assert.Error(t, err)
}

func TestServiceVsActual(t *testing.T) {
	repo := newMockRepo()
	repo.managed = []ManagedProduct{
		{Code: "RINO-A", Name: "Tote"},
		{Code: "RINO-B", Name: "Pouch"},
		{Code: "RINO-C", Name: "Idle"},
	}
	repo.budget["RINO-A"] = Figures{Quantity: 10, Sales: 50000, Cost: 20000, GrossProfit: 30000}
	repo.actual["RINO-A"] = Figures{Quantity: 8, Sales: 40000, Cost: 16000, GrossProfit: 24000}
	// RINO-B has actuals without a budget.
	repo.actual["RINO-B"] = Figures{Quantity: 3, Sales: 9000, Cost: 3000, GrossProfit: 6000}

	svc := NewService(repo)
	report, err := svc.VsActual(context.Background(), "2025-04", "2025-06", 0)
	require.NoError(t, err)

	// RINO-C has neither side and is left out.
	require.Len(t, report.Products, 2)
	assert.True(t, report.HasBudgetData)

	a := report.Products[0]
	assert.Equal(t, "RINO-A", a.ProductCode)
	assert.InDelta(t, 80.0, a.QuantityAchievementRate, 1e-9)
	assert.InDelta(t, 80.0, a.SalesAchievementRate, 1e-9)
	assert.InDelta(t, 80.0, a.GrossProfitAchievementRate, 1e-9)
	assert.InDelta(t, 60.0, a.BudgetGrossProfitRate, 1e-9)
	assert.InDelta(t, 60.0, a.ActualGrossProfitRate, 1e-9)

	b := report.Products[1]
	assert.Equal(t, "RINO-B", b.ProductCode)
	assert.Zero(t, b.SalesAchievementRate, "no budget means no achievement rate")

	sum := report.Summary
	assert.Equal(t, 10, sum.TotalBudgetQuantity)
	assert.Equal(t, 11, sum.TotalActualQuantity)
	assert.InDelta(t, 49000.0, sum.TotalActualSales, 1e-9)
	assert.InDelta(t, 110.0, sum.TotalQuantityAchievementRate, 1e-9)
	assert.InDelta(t, 98.0, sum.TotalSalesAchievementRate, 1e-9)
	assert.InDelta(t, 100.0, sum.TotalGrossProfitAchievementRate, 1e-9)
}

func TestServiceVsActualRatesRoundToOneDecimal(t *testing.T) {
	repo := newMockRepo()
	repo.managed = []ManagedProduct{{Code: "RINO-A", Name: "Tote"}}
	repo.budget["RINO-A"] = Figures{Quantity: 3, Sales: 3000, GrossProfit: 900}
	repo.actual["RINO-A"] = Figures{Quantity: 1, Sales: 1000, GrossProfit: 300}

	svc := NewService(repo)
	report, err := svc.VsActual(context.Background(), "2025-06", "2025-06", 0)
	require.NoError(t, err)
	require.Len(t, report.Products, 1)
	assert.InDelta(t, 33.3, report.Products[0].QuantityAchievementRate, 1e-9)
	assert.InDelta(t, 33.3, report.Products[0].SalesAchievementRate, 1e-9)
}

func TestServiceVsActualNoBudgetData(t *testing.T) {
	repo := newMockRepo()
	repo.managed = []ManagedProduct{{Code: "RINO-A", Name: "Tote"}}
	repo.actual["RINO-A"] = Figures{Quantity: 2, Sales: 2000, GrossProfit: 800}

	svc := NewService(repo)
	report, err := svc.VsActual(context.Background(), "2025-06", "2025-06", 3)
	require.NoError(t, err)
	assert.False(t, report.HasBudgetData)
	assert.Equal(t, int64(3), repo.actualChannelID, "channel filter applies to actuals")
}

func TestServiceVsActualInvalidRange(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.VsActual(context.Background(), "2025-06", "2025-04", 0)
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)

	_, err = svc.ListMonthly(context.Background(), "junk", "2025-06")
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)
}
