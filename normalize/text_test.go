package normalize

import "testing"

func TestParseArea_WithUnit(t *testing.T) {
	v := ParseArea("54.5 м²")
	if v == nil || *v != 54.5 {
		t.Fatalf("expected 54.5, got %v", v)
	}
}

func TestParseArea_LabelPrefix(t *testing.T) {
	v := ParseArea("Общая площадь: 42 м²")
	if v == nil || *v != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestParseArea_CommaDecimal(t *testing.T) {
	v := ParseArea("54,5 м²")
	if v == nil || *v != 54.5 {
		t.Fatalf("expected 54.5, got %v", v)
	}
}

func TestParseArea_NoNumber(t *testing.T) {
	if v := ParseArea("не указано"); v != nil {
		t.Fatalf("expected nil, got %v", *v)
	}
}

func TestExtractCardID(t *testing.T) {
	url := "https://www.olx.uz/d/obyavlenie/sdayotsya-kvartira-IDVxT3v.html"
	if id := ExtractCardID(url); id != "VxT3v" {
		t.Fatalf("expected VxT3v, got %q", id)
	}
}

func TestExtractCardID_Absent(t *testing.T) {
	if id := ExtractCardID("https://www.olx.uz/nedvizhimost/"); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  1 200\n  сум "); got != "1 200 сум" {
		t.Fatalf("unexpected %q", got)
	}
}
