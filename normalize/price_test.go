package normalize

import "testing"

func TestParsePrice_SumWithThousandsSpace(t *testing.T) {
	value, currency := ParsePrice("1 200 сум")
	if value == nil || *value != 1200 {
		t.Fatalf("expected value 1200, got %v", value)
	}
	if currency == nil || *currency != "сум" {
		t.Fatalf("expected currency сум, got %v", currency)
	}
}

func TestParsePrice_NonBreakingSpaces(t *testing.T) {
	value, currency := ParsePrice("4 500 000 сум")
	if value == nil || *value != 4500000 {
		t.Fatalf("expected value 4500000, got %v", value)
	}
	if currency == nil || *currency != "сум" {
		t.Fatalf("expected currency сум, got %v", currency)
	}
}

func TestParsePrice_CommaDecimal(t *testing.T) {
	value, _ := ParsePrice("1,5 млн")
	if value == nil || *value != 1.5 {
		t.Fatalf("expected value 1.5, got %v", value)
	}
}

func TestParsePrice_ConventionalUnits(t *testing.T) {
	value, currency := ParsePrice("450 у.е. Договорная")
	if value == nil || *value != 450 {
		t.Fatalf("expected value 450, got %v", value)
	}
	if currency == nil || *currency != "у.е" {
		t.Fatalf("expected currency у.е, got %v", currency)
	}
}

func TestParsePrice_NoNumber(t *testing.T) {
	value, currency := ParsePrice("Договорная")
	if value != nil {
		t.Fatalf("expected nil value, got %v", *value)
	}
	if currency != nil {
		t.Fatalf("expected nil currency, got %v", *currency)
	}
}

func TestParsePrice_Empty(t *testing.T) {
	value, currency := ParsePrice("")
	if value != nil || currency != nil {
		t.Fatalf("expected nil results for empty input")
	}
}
