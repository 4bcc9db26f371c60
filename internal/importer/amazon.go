package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrNoASINColumn means no recognizable parent-ASIN column header was found
// in either encoding.
var ErrNoASINColumn = errors.New("importer: csv has no recognizable parent ASIN column")

// Amazon business report headers. The parent ASIN column appears with both
// full-width and half-width parentheses depending on the export locale.
var (
	asinHeaders      = []string{"（親）ASIN", "(親)ASIN"}
	titleHeaders     = []string{"タイトル"}
	amzQtyHeaders    = []string{"注文された商品点数"}
	amzQtyB2BHeaders = []string{"注文点数 - B2B"}
	amzAmtHeaders    = []string{"注文商品の売上額"}
	amzAmtB2BHeaders = []string{"注文商品の売上額 - B2B"}
)

// ParseAmazonCSV decodes an Amazon business report. Consumer figures are the
// report totals minus the B2B columns, clamped at zero. UTF-8 is tried
// first, then Shift_JIS, like ParseSalesCSV.
func ParseAmazonCSV(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("importer: read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	rows, utf8Err := parseAmazonRows(raw)
	if utf8Err == nil {
		return rows, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return nil, utf8Err
	}
	rows, err = parseAmazonRows(decoded)
	if err != nil {
		return nil, utf8Err
	}
	return rows, nil
}

func parseAmazonRows(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("importer: read csv header: %w", err)
	}

	asinIdx := findColumn(header, asinHeaders)
	if asinIdx < 0 {
		return nil, ErrNoASINColumn
	}
	titleIdx := findColumn(header, titleHeaders)
	qtyIdx := findColumn(header, amzQtyHeaders)
	qtyB2BIdx := findColumn(header, amzQtyB2BHeaders)
	amtIdx := findColumn(header, amzAmtHeaders)
	amtB2BIdx := findColumn(header, amzAmtB2BHeaders)

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("importer: read csv line %d: %w", line, err)
		}

		row := Row{SKU: strings.TrimSpace(field(record, asinIdx))}
		if row.SKU == "" {
			continue
		}
		row.Name = strings.TrimSpace(field(record, titleIdx))

		qty, err := parseInt(field(record, qtyIdx))
		if err != nil {
			return nil, fmt.Errorf("importer: csv line %d: quantity: %w", line, err)
		}
		qtyB2B, err := parseInt(field(record, qtyB2BIdx))
		if err != nil {
			return nil, fmt.Errorf("importer: csv line %d: b2b quantity: %w", line, err)
		}
		amt, err := parseAmount(field(record, amtIdx))
		if err != nil {
			return nil, fmt.Errorf("importer: csv line %d: amount: %w", line, err)
		}
		amtB2B, err := parseAmount(field(record, amtB2BIdx))
		if err != nil {
			return nil, fmt.Errorf("importer: csv line %d: b2b amount: %w", line, err)
		}

		row.Quantity = max(0, qty-qtyB2B)
		row.AmountInclTax = amt - amtB2B
		if row.AmountInclTax < 0 {
			row.AmountInclTax = 0
		}
		rows = append(rows, row)
	}
	return rows, nil
}
