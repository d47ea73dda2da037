// Package normalize converts raw Russian-language text scraped from listing
// pages into typed values. Every parser is total: malformed input yields an
// absent value, never an error, so one bad record cannot abort a batch.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// numericRunRegexp captures the first maximal run of digits, spaces,
	// commas and periods ("1 200", "1,5", "495 000.00").
	numericRunRegexp = regexp.MustCompile(`[\d\s,.]+`)
	// currencyRegexp captures the non-numeric token immediately after the
	// numeric run ("сум", "у.е").
	currencyRegexp = regexp.MustCompile(`[\d\s,.]+\s*([^\d\s,.]+(?:\.[^\d\s,.]+)?)`)
)

// ParsePrice extracts a numeric value and currency token from a price block
// like "1 200 сум" or "450 у.е. Договорная". Spaces inside the number are
// thousands separators, a comma is the decimal separator. The currency is
// returned as scraped, without canonicalization. Either return may be nil.
func ParsePrice(raw string) (*float64, *string) {
	if raw == "" {
		return nil, nil
	}
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", " ")

	var value *float64
	if num := numericRunRegexp.FindString(s); num != "" {
		num = strings.ReplaceAll(num, " ", "")
		num = strings.ReplaceAll(num, ",", ".")
		if v, err := strconv.ParseFloat(num, 64); err == nil {
			value = &v
		}
	}

	var currency *string
	if m := currencyRegexp.FindStringSubmatch(s); m != nil {
		cur := strings.TrimSpace(m[1])
		if cur != "" {
			currency = &cur
		}
	}

	return value, currency
}
