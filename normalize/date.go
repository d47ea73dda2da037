package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ruMonths maps lowercase genitive Russian month names to month numbers,
// as they appear in "21 ноября в 13:20" style timestamps.
var ruMonths = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var (
	todayTimeRegexp     = regexp.MustCompile(`Сегодня\s*в\s*([0-2]?\d:[0-5]\d)`)
	yesterdayTimeRegexp = regexp.MustCompile(`Вчера\s*в\s*([0-2]?\d:[0-5]\d)`)
	// namedDateRegexp matches "21 ноября", "21 ноября в 13:20" and the
	// detail-page form "2 января 2025 г.".
	namedDateRegexp  = regexp.MustCompile(`(?i)(\d{1,2})\s+([а-я]+)(?:\s+(\d{4}))?\s*(?:в\s*([0-2]?\d:[0-5]\d))?`)
	dottedDateRegexp = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?`)
)

// ParseListingDate resolves the date/time part of a listing timestamp
// against a reference clock. Recognized shapes, in order:
//
//	"Сегодня в 10:47"        -> now's date
//	"Вчера в 18:03"          -> now - 1 day
//	"21 ноября в 13:20"      -> named month, year inferred
//	"2 января 2025 г."       -> named month with explicit year
//	"01.11.2025" / "01.11"   -> numeric form
//
// When no year is given the current year is assumed, unless the month is
// ahead of the reference month, in which case the listing is taken to be
// from the previous year. Anything unrecognized yields (nil, "").
func ParseListingDate(raw string, now time.Time) (*time.Time, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, ""
	}

	if strings.Contains(s, "Сегодня") {
		d := truncateToDay(now)
		return &d, firstGroup(todayTimeRegexp, s)
	}
	if strings.Contains(s, "Вчера") {
		d := truncateToDay(now).AddDate(0, 0, -1)
		return &d, firstGroup(yesterdayTimeRegexp, s)
	}

	if m := namedDateRegexp.FindStringSubmatch(s); m != nil {
		month, ok := ruMonths[strings.ToLower(m[2])]
		if !ok {
			return nil, ""
		}
		day, _ := strconv.Atoi(m[1])
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		} else if month > now.Month() {
			year--
		}
		return makeDate(year, month, day), m[4]
	}

	if m := dottedDateRegexp.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		if mon < 1 || mon > 12 {
			return nil, ""
		}
		return makeDate(year, time.Month(mon), day), ""
	}

	return nil, ""
}

// SplitLocationDate splits a combined "Ташкент, Чиланзар - Сегодня в 10:47"
// block into its location and date parts. Some markup variants separate the
// two with a double space instead of " - ".
func SplitLocationDate(text string) (location, datePart string) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", ""
	}
	if loc, dt, found := strings.Cut(s, " - "); found {
		return strings.TrimSpace(loc), strings.TrimSpace(dt)
	}
	parts := strings.SplitN(s, "  ", 2)
	location = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		datePart = strings.TrimSpace(parts[1])
	}
	return location, datePart
}

// makeDate validates the components; time.Date silently normalizes
// out-of-range days, which would turn "31 февраля" into a March date.
func makeDate(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return nil
	}
	return &d
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
