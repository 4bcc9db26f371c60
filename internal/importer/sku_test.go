package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSKU(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"hyphenated base", "RINO-ABC123", "RINO-ABC123"},
		{"hyphenated with size", "RINO-ABC123-M", "RINO-ABC123"},
		{"hyphenated with color and size", "RINO-TS01-BLUE-L", "RINO-TS01"},
		{"compact three digits", "RINOTS001-M", "RINOTS001"},
		{"compact four digits", "RINOBAG0012", "RINOBAG0012"},
		{"lowercase input", "rino-abc123-m", "RINO-ABC123"},
		{"surrounding whitespace", "  RINO-ABC123-M  ", "RINO-ABC123"},
		{"foreign code kept as is", "OTHER-001", "OTHER-001"},
		{"foreign lowercase uppercased", "other-001", "OTHER-001"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeSKU(tc.in))
		})
	}
}

func TestNormalizeSKUHyphenatedWinsOverCompact(t *testing.T) {
	// "RINO-TS001-M" satisfies both prefixes; the hyphenated rule applies
	// first and keeps the full base code.
	assert.Equal(t, "RINO-TS001", NormalizeSKU("RINO-TS001-M"))
}
