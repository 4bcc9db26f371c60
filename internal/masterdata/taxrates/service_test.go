package taxrates

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinori/backoffice/internal/shared"
)

type mockRepo struct {
	rates map[string]float64
}

func newMockRepo(rates map[string]float64) *mockRepo {
	if rates == nil {
		rates = map[string]float64{}
	}
	return &mockRepo{rates: rates}
}

func (m *mockRepo) List(context.Context) ([]TaxRate, error) {
	var out []TaxRate
	for ym, rate := range m.rates {
		out = append(out, TaxRate{StartYM: ym, Rate: rate})
	}
	return out, nil
}

func (m *mockRepo) Create(_ context.Context, t TaxRate) error {
	if _, ok := m.rates[t.StartYM]; ok {
		return shared.ErrConflict
	}
	m.rates[t.StartYM] = t.Rate
	return nil
}

func (m *mockRepo) Update(_ context.Context, t TaxRate) error {
	if _, ok := m.rates[t.StartYM]; !ok {
		return shared.ErrNotFound
	}
	m.rates[t.StartYM] = t.Rate
	return nil
}

func (m *mockRepo) Delete(_ context.Context, startYM string) error {
	if _, ok := m.rates[startYM]; !ok {
		return shared.ErrNotFound
	}
	delete(m.rates, startYM)
	return nil
}

func (m *mockRepo) RateFor(_ context.Context, ym string) (float64, error) {
	var months []string
	for start := range m.rates {
		if start <= ym {
			months = append(months, start)
		}
	}
	if len(months) == 0 {
		return 0, shared.ErrNotFound
	}
	sort.Strings(months)
	return m.rates[months[len(months)-1]], nil
}

func TestServiceRateForPicksLatestApplicable(t *testing.T) {
	svc := NewService(newMockRepo(map[string]float64{
		"2014-04": 0.08,
		"2019-10": 0.10,
	}))

	rate, err := svc.RateFor(context.Background(), "2019-09")
	require.NoError(t, err)
	assert.Equal(t, 0.08, rate)

	rate, err = svc.RateFor(context.Background(), "2019-10")
	require.NoError(t, err)
	assert.Equal(t, 0.10, rate)

	rate, err = svc.RateFor(context.Background(), "2025-01")
	require.NoError(t, err)
	assert.Equal(t, 0.10, rate)
}

func TestServiceRateForBeforeEarliest(t *testing.T) {
	svc := NewService(newMockRepo(map[string]float64{"2019-10": 0.10}))

	_, err := svc.RateFor(context.Background(), "2019-09")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceRateForInvalidPeriod(t *testing.T) {
	svc := NewService(newMockRepo(nil))

	_, err := svc.RateFor(context.Background(), "2019-13")
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo(nil))

	assert.ErrorIs(t, svc.Create(context.Background(), TaxRate{StartYM: "201910", Rate: 0.1}), shared.ErrInvalidPeriod)
	assert.Error(t, svc.Create(context.Background(), TaxRate{StartYM: "2019-10", Rate: 1.0}))
	assert.NoError(t, svc.Create(context.Background(), TaxRate{StartYM: "2019-10", Rate: 0.1}))
	assert.ErrorIs(t, svc.Create(context.Background(), TaxRate{StartYM: "2019-10", Rate: 0.1}), shared.ErrConflict)
}
