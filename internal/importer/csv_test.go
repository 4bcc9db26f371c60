package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func TestParseSalesCSVUTF8(t *testing.T) {
	csv := "商品コード,商品名,受注数,小計\n" +
		"RINO-ABC123-M,Tシャツ M,3,4950\n" +
		"RINO-ABC123-L,Tシャツ L,1,1650\n"

	rows, err := ParseSalesCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{SKU: "RINO-ABC123-M", Name: "Tシャツ M", Quantity: 3, AmountInclTax: 4950}, rows[0])
	assert.Equal(t, Row{SKU: "RINO-ABC123-L", Name: "Tシャツ L", Quantity: 1, AmountInclTax: 1650}, rows[1])
}

func TestParseSalesCSVWithBOM(t *testing.T) {
	csv := "\xEF\xBB\xBF商品コード,商品名,受注数,小計\nRINO-X1,商品,1,1100\n"

	rows, err := ParseSalesCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "RINO-X1", rows[0].SKU)
}

func TestParseSalesCSVShiftJIS(t *testing.T) {
	utf8 := "商品ｺｰﾄﾞ,商品名,数量,金額\nRINO-SJ01,シフトJIS商品,2,2200\n"
	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(utf8))
	require.NoError(t, err)

	rows, err := ParseSalesCSV(bytes.NewReader(sjis))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "RINO-SJ01", rows[0].SKU)
	assert.Equal(t, "シフトJIS商品", rows[0].Name)
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Equal(t, 2200.0, rows[0].AmountInclTax)
}

func TestParseSalesCSVAlternateHeaders(t *testing.T) {
	csv := "品番,品名,個数,売上金額（税込）\nRINO-ALT,別名ヘッダ,5,5500\n"

	rows, err := ParseSalesCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Quantity)
	assert.Equal(t, 5500.0, rows[0].AmountInclTax)
}

func TestParseSalesCSVFormattedNumbers(t *testing.T) {
	csv := "SKU,商品名,数量,金額\nRINO-FMT,\"カンマ入り\",\"1,200\",\"¥1,320,000\"\n"

	rows, err := ParseSalesCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1200, rows[0].Quantity)
	assert.Equal(t, 1320000.0, rows[0].AmountInclTax)
}

func TestParseSalesCSVSkipsBlankSKU(t *testing.T) {
	csv := "商品コード,商品名,数量,金額\n,空行,1,100\nRINO-OK,正常,1,100\n"

	rows, err := ParseSalesCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "RINO-OK", rows[0].SKU)
}

func TestParseSalesCSVNoSKUColumn(t *testing.T) {
	csv := "注文番号,金額\n123,100\n"

	_, err := ParseSalesCSV(strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrNoSKUColumn)
}
