package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinori/backoffice/internal/shared"
)

type mockRepo struct {
	items map[string]Product
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[string]Product{}}
}

func (m *mockRepo) List(_ context.Context, filter Filter) ([]Product, error) {
	var out []Product
	for _, p := range m.items {
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) Get(_ context.Context, code string) (*Product, error) {
	p, ok := m.items[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (m *mockRepo) Create(_ context.Context, p Product) error {
	if _, ok := m.items[p.Code]; ok {
		return shared.ErrConflict
	}
	m.items[p.Code] = p
	return nil
}

func (m *mockRepo) Update(_ context.Context, p Product) error {
	if _, ok := m.items[p.Code]; !ok {
		return shared.ErrNotFound
	}
	m.items[p.Code] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, code string) error {
	if _, ok := m.items[code]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, code)
	return nil
}

func validProduct() Product {
	return Product{
		Code:              "RINO-ABC",
		Name:              "テスト商品",
		SalesPriceExclTax: 1500,
		CostExclTax:       600,
		Type:              TypeOwnBrand,
		Status:            StatusManaged,
	}
}

func TestServiceCreateNormalizesCode(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validProduct()
	p.Code = "  rino-abc "
	p.ASIN = " b0testasin1 "

	created, err := svc.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "RINO-ABC", created.Code)
	assert.Equal(t, "B0TESTASIN1", created.ASIN)
}

func TestServiceCreateDuplicateCode(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), validProduct())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validProduct())
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	cases := map[string]func(*Product){
		"empty code":     func(p *Product) { p.Code = "" },
		"empty name":     func(p *Product) { p.Name = " " },
		"negative price": func(p *Product) { p.SalesPriceExclTax = -1 },
		"negative cost":  func(p *Product) { p.CostExclTax = -1 },
		"unknown type":   func(p *Product) { p.Type = "consignment" },
		"unknown status": func(p *Product) { p.Status = "archived" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validProduct()
			mutate(&p)
			_, err := svc.Create(context.Background(), p)
			assert.Error(t, err)
		})
	}
}

func TestParseManagementStatusJapanese(t *testing.T) {
	st, err := ParseManagementStatus("管理中")
	require.NoError(t, err)
	assert.Equal(t, StatusManaged, st)

	st, err = ParseManagementStatus("管理外")
	require.NoError(t, err)
	assert.Equal(t, StatusUnmanaged, st)

	_, err = ParseManagementStatus("保留")
	assert.Error(t, err)
}

func TestParseProductTypeJapanese(t *testing.T) {
	pt, err := ParseProductType("自社")
	require.NoError(t, err)
	assert.Equal(t, TypeOwnBrand, pt)

	pt, err = ParseProductType("仕入")
	require.NoError(t, err)
	assert.Equal(t, TypePurchased, pt)
}
