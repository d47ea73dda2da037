package normalize

import (
	"testing"
	"time"
)

var ref = time.Date(2024, time.December, 1, 15, 30, 0, 0, time.UTC)

func TestParseListingDate_Today(t *testing.T) {
	date, hhmm := ParseListingDate("Сегодня в 10:47", ref)
	if date == nil || date.Format("2006-01-02") != "2024-12-01" {
		t.Fatalf("expected 2024-12-01, got %v", date)
	}
	if hhmm != "10:47" {
		t.Fatalf("expected 10:47, got %q", hhmm)
	}
}

func TestParseListingDate_TodayWithoutTime(t *testing.T) {
	date, hhmm := ParseListingDate("Сегодня", ref)
	if date == nil || date.Format("2006-01-02") != "2024-12-01" {
		t.Fatalf("expected 2024-12-01, got %v", date)
	}
	if hhmm != "" {
		t.Fatalf("expected no time, got %q", hhmm)
	}
}

func TestParseListingDate_Yesterday(t *testing.T) {
	date, hhmm := ParseListingDate("Вчера в 18:03", ref)
	if date == nil || date.Format("2006-01-02") != "2024-11-30" {
		t.Fatalf("expected 2024-11-30, got %v", date)
	}
	if hhmm != "18:03" {
		t.Fatalf("expected 18:03, got %q", hhmm)
	}
}

func TestParseListingDate_NamedMonth(t *testing.T) {
	date, hhmm := ParseListingDate("21 ноября в 13:20", ref)
	if date == nil || date.Format("2006-01-02") != "2024-11-21" {
		t.Fatalf("expected 2024-11-21, got %v", date)
	}
	if hhmm != "13:20" {
		t.Fatalf("expected 13:20, got %q", hhmm)
	}
}

// A month ahead of the reference month belongs to the previous year:
// listings are recent, so a "future" date means last year.
func TestParseListingDate_FutureMonthRollsBack(t *testing.T) {
	refMarch := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	date, _ := ParseListingDate("21 ноября", refMarch)
	if date == nil || date.Format("2006-01-02") != "2024-11-21" {
		t.Fatalf("expected 2024-11-21, got %v", date)
	}
}

func TestParseListingDate_ExplicitYearWins(t *testing.T) {
	date, _ := ParseListingDate("2 января 2025 г.", ref)
	if date == nil || date.Format("2006-01-02") != "2025-01-02" {
		t.Fatalf("expected 2025-01-02, got %v", date)
	}
}

func TestParseListingDate_Dotted(t *testing.T) {
	date, hhmm := ParseListingDate("01.11.2025", ref)
	if date == nil || date.Format("2006-01-02") != "2025-11-01" {
		t.Fatalf("expected 2025-11-01, got %v", date)
	}
	if hhmm != "" {
		t.Fatalf("expected no time, got %q", hhmm)
	}
}

func TestParseListingDate_DottedTwoDigitYear(t *testing.T) {
	date, _ := ParseListingDate("05.03.24", ref)
	if date == nil || date.Format("2006-01-02") != "2024-03-05" {
		t.Fatalf("expected 2024-03-05, got %v", date)
	}
}

func TestParseListingDate_DottedNoYear(t *testing.T) {
	date, _ := ParseListingDate("15.06", ref)
	if date == nil || date.Format("2006-01-02") != "2024-06-15" {
		t.Fatalf("expected 2024-06-15, got %v", date)
	}
}

func TestParseListingDate_InvalidDay(t *testing.T) {
	if date, _ := ParseListingDate("31 февраля", ref); date != nil {
		t.Fatalf("expected nil for impossible date, got %v", date)
	}
}

func TestParseListingDate_UnknownMonthName(t *testing.T) {
	if date, _ := ParseListingDate("21 нонабря", ref); date != nil {
		t.Fatalf("expected nil for unknown month, got %v", date)
	}
}

func TestParseListingDate_Garbage(t *testing.T) {
	date, hhmm := ParseListingDate("скоро", ref)
	if date != nil || hhmm != "" {
		t.Fatalf("expected nil results, got %v %q", date, hhmm)
	}
}

func TestSplitLocationDate_Dash(t *testing.T) {
	loc, dt := SplitLocationDate("Ташкент, Мирзо-Улугбекский район - 21 ноября в 13:20")
	if loc != "Ташкент, Мирзо-Улугбекский район" {
		t.Fatalf("unexpected location %q", loc)
	}
	if dt != "21 ноября в 13:20" {
		t.Fatalf("unexpected date part %q", dt)
	}
}

func TestSplitLocationDate_DoubleSpace(t *testing.T) {
	loc, dt := SplitLocationDate("Ташкент, Чиланзар  01.11.2025")
	if loc != "Ташкент, Чиланзар" {
		t.Fatalf("unexpected location %q", loc)
	}
	if dt != "01.11.2025" {
		t.Fatalf("unexpected date part %q", dt)
	}
}

func TestSplitLocationDate_LocationOnly(t *testing.T) {
	loc, dt := SplitLocationDate("Ташкент, Сергели")
	if loc != "Ташкент, Сергели" || dt != "" {
		t.Fatalf("unexpected split %q / %q", loc, dt)
	}
}
