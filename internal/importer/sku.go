package importer

import (
	"regexp"
	"strings"
)

// SKU variants collapse onto a parent product code by prefix. The hyphenated
// form wins over the compact form; anything else keeps the full SKU as its
// code. Matching is case insensitive; codes are stored uppercase.
var (
	hyphenatedCode = regexp.MustCompile(`^(RINO-[A-Z0-9]+)`)
	compactCode    = regexp.MustCompile(`^(RINO[A-Z]+[0-9]{3,4})`)
)

// NormalizeSKU reduces a raw SKU to its canonical parent product code.
// An empty or whitespace-only SKU normalizes to "".
func NormalizeSKU(raw string) string {
	sku := strings.ToUpper(strings.TrimSpace(raw))
	if sku == "" {
		return ""
	}
	if m := hyphenatedCode.FindStringSubmatch(sku); m != nil {
		return m[1]
	}
	if m := compactCode.FindStringSubmatch(sku); m != nil {
		return m[1]
	}
	return sku
}
