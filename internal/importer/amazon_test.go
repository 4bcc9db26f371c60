package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinori/backoffice/internal/masterdata/products"
)

const amazonHeader = "（親）ASIN,タイトル,注文された商品点数,注文点数 - B2B,注文商品の売上額,注文商品の売上額 - B2B\n"

func TestParseAmazonCSV(t *testing.T) {
	csv := amazonHeader +
		"B0TESTASIN1,Tシャツ,12,2,\"￥56,100\",\"￥1,100\"\n" +
		"B0CLAMPED01,返品過多,1,5,￥500,￥900\n" +
		",ASIN空行,1,0,￥100,￥0\n"

	rows, err := ParseAmazonCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2, "rows without a parent ASIN are dropped")

	assert.Equal(t, "B0TESTASIN1", rows[0].SKU)
	assert.Equal(t, "Tシャツ", rows[0].Name)
	assert.Equal(t, 10, rows[0].Quantity, "B2B quantity deducted")
	assert.Equal(t, 55000.0, rows[0].AmountInclTax, "B2B amount deducted")

	assert.Equal(t, 0, rows[1].Quantity, "deduction clamps at zero")
	assert.Equal(t, 0.0, rows[1].AmountInclTax)
}

func TestParseAmazonCSVRequiresASINColumn(t *testing.T) {
	_, err := ParseAmazonCSV(strings.NewReader(testCSV))
	assert.ErrorIs(t, err, ErrNoASINColumn)
}

func amazonProduct() products.Product {
	return products.Product{Code: "RINO-ABC123", Name: "Tシャツ", CostExclTax: 500, ASIN: "B0TESTASIN1", Type: products.TypeOwnBrand, Status: products.StatusManaged}
}

func TestServiceImportAmazon(t *testing.T) {
	hidden := unmanagedProduct()
	hidden.ASIN = "B0HIDDEN001"
	repo := newFakeRepo(amazonProduct(), hidden)
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	csv := amazonHeader +
		"B0TESTASIN1,Tシャツ,12,2,\"￥56,100\",\"￥1,100\"\n" +
		"B0HIDDEN001,非管理品,3,0,￥3300,￥0\n"

	result, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		DataSource:     DataSourceAmazon,
		FileName:       "business-report.csv",
		File:           strings.NewReader(csv),
		ImportedBy:     3,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.SkippedUnmanaged)
	assert.Empty(t, result.UnregisteredASINs)

	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "RINO-ABC123", rec.ProductCode, "record carries the matched parent code")
	assert.Equal(t, "B0TESTASIN1", rec.SKU)
	assert.Equal(t, 10, rec.Quantity)
	assert.Equal(t, 50000.0, rec.SalesAmountExcl)
	assert.Equal(t, 5000.0, rec.CostAmount)
	assert.Equal(t, 45000.0, rec.GrossProfitAmount)
	assert.Equal(t, int64(3), rec.CreatedBy)

	h := repo.histories[result.HistoryID]
	assert.Equal(t, DataSourceAmazon, h.DataSource)
}

func TestServiceImportAmazonUnregisteredASINsAbort(t *testing.T) {
	repo := newFakeRepo(amazonProduct())
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	csv := amazonHeader +
		"B0TESTASIN1,Tシャツ,12,2,\"￥56,100\",\"￥1,100\"\n" +
		"B0UNKNOWN99,謎の商品,3,0,￥3300,￥0\n" +
		"B0UNKNOWN99,謎の商品 再掲,1,0,￥1100,￥0\n"

	result, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		DataSource:     DataSourceAmazon,
		FileName:       "business-report.csv",
		File:           strings.NewReader(csv),
	})
	require.NoError(t, err)

	require.Len(t, result.UnregisteredASINs, 1, "distinct ASINs, first occurrence wins")
	assert.Equal(t, UnregisteredASIN{ASIN: "B0UNKNOWN99", Title: "謎の商品"}, result.UnregisteredASINs[0])
	assert.NotEmpty(t, result.Message)
	assert.Zero(t, result.HistoryID, "nothing written until the caller confirms")
	assert.Zero(t, result.Inserted)
	assert.Empty(t, repo.histories)
	assert.Empty(t, repo.records)
}

func TestServiceImportAmazonSkipUnregistered(t *testing.T) {
	repo := newFakeRepo(amazonProduct())
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	csv := amazonHeader +
		"B0TESTASIN1,Tシャツ,12,2,\"￥56,100\",\"￥1,100\"\n" +
		"B0UNKNOWN99,謎の商品,3,0,￥3300,￥0\n"

	result, err := svc.Import(context.Background(), Params{
		TargetYM:              "2025-06",
		SalesChannelID:        1,
		Mode:                  ModeOverwrite,
		DataSource:            DataSourceAmazon,
		FileName:              "business-report.csv",
		File:                  strings.NewReader(csv),
		SkipUnregisteredASINs: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.UnregisteredASINs, 1, "skipped ASINs are still reported")
	assert.Equal(t, 0, result.NewCandidates, "amazon rows never become product candidates")
	require.Len(t, repo.records, 1)
	assert.Equal(t, "RINO-ABC123", repo.records[0].ProductCode)
}
