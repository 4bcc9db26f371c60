package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrNoSKUColumn means no recognizable SKU column header was found in
// either encoding.
var ErrNoSKUColumn = errors.New("importer: csv has no recognizable SKU column")

// Header spellings seen across order platform exports, including the
// half-width katakana variants some tools emit.
var (
	skuHeaders      = []string{"商品コード", "商品ｺｰﾄﾞ", "品番", "SKU", "sku"}
	nameHeaders     = []string{"商品名", "商品名称", "品名"}
	quantityHeaders = []string{"受注数", "数量", "個数"}
	amountHeaders   = []string{"小計", "売上金額（税込）", "売上金額(税込)", "金額"}
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseSalesCSV decodes an uploaded sales file. The file is tried as UTF-8
// first; when no SKU column shows up it is re-decoded as Shift_JIS, which is
// what the order platform exports by default.
func ParseSalesCSV(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("importer: read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	rows, utf8Err := parseRows(raw)
	if utf8Err == nil {
		return rows, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return nil, utf8Err
	}
	rows, err = parseRows(decoded)
	if err != nil {
		return nil, utf8Err
	}
	return rows, nil
}

func parseRows(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("importer: read csv header: %w", err)
	}

	skuIdx := findColumn(header, skuHeaders)
	if skuIdx < 0 {
		return nil, ErrNoSKUColumn
	}
	nameIdx := findColumn(header, nameHeaders)
	qtyIdx := findColumn(header, quantityHeaders)
	amountIdx := findColumn(header, amountHeaders)

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("importer: read csv line %d: %w", line, err)
		}

		row := Row{SKU: strings.TrimSpace(field(record, skuIdx))}
		if row.SKU == "" {
			continue
		}
		row.Name = strings.TrimSpace(field(record, nameIdx))
		row.Quantity, err = parseInt(field(record, qtyIdx))
		if err != nil {
			return nil, fmt.Errorf("importer: csv line %d: quantity: %w", line, err)
		}
		row.AmountInclTax, err = parseAmount(field(record, amountIdx))
		if err != nil {
			return nil, fmt.Errorf("importer: csv line %d: amount: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func findColumn(header []string, candidates []string) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, c := range candidates {
			if h == c {
				return i
			}
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseInt(s string) (int, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseAmount(s string) (float64, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// cleanNumber strips thousands separators and currency marks that show up
// in spreadsheet-exported files.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	return strings.TrimSpace(s)
}
