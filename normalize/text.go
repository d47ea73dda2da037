package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	areaRegexp   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	cardIDRegexp = regexp.MustCompile(`ID([A-Za-z0-9]+)`)
)

// ParseArea extracts the first decimal number from free text like
// "54.5 м²" or "Общая площадь: 54 м²". Returns nil when no number occurs.
func ParseArea(raw string) *float64 {
	m := areaRegexp.FindString(raw)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ExtractCardID returns the alphanumeric token following the literal "ID"
// marker in a listing URL, or "" when the URL carries no id.
func ExtractCardID(url string) string {
	if m := cardIDRegexp.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// CollapseSpace trims a scraped text fragment and collapses internal runs
// of whitespace to single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
