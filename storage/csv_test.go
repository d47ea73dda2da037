package storage

import (
	"os"
	"path/filepath"
	"testing"

	"olx_harvester/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yunusabad.csv")

	rows := []models.ListingSummary{
		{
			Title:         "Сдаётся 2-комнатная квартира",
			URL:           "https://www.olx.uz/d/obyavlenie/x-IDAbc12.html",
			PriceRaw:      "4 500 000 сум",
			PriceValue:    floatPtr(4500000),
			PriceCurrency: "сум",
			LocationText:  "Ташкент, Юнусабадский район",
			PostedDateRaw: "Сегодня в 10:47",
			PostedDate:    "2024-12-01",
			TimeRaw:       "10:47",
			CardID:        "Abc12",
			DistrictID:    25,
			DistrictName:  "yunusabad",
		},
		{
			URL:          "https://www.olx.uz/d/obyavlenie/y-IDDef34.html",
			CardID:       "Def34",
			DistrictID:   25,
			DistrictName: "yunusabad",
		},
	}

	if err := WriteSummaries(path, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadSummaries(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].CardID != "Abc12" || got[1].CardID != "Def34" {
		t.Fatalf("card ids not preserved: %q %q", got[0].CardID, got[1].CardID)
	}
	if got[0].PriceValue == nil || *got[0].PriceValue != 4500000 {
		t.Fatalf("price value not preserved: %v", got[0].PriceValue)
	}
	if got[1].PriceValue != nil {
		t.Fatalf("expected absent price to stay absent, got %v", *got[1].PriceValue)
	}
	if got[0].PostedDateRaw != "Сегодня в 10:47" {
		t.Fatalf("cyrillic field mangled: %q", got[0].PostedDateRaw)
	}
	if got[0].DistrictID != 25 {
		t.Fatalf("district id not preserved: %d", got[0].DistrictID)
	}
}

func TestDetailRoundTrip_CardIDSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yunusabad_cards_details.csv")

	rows := []models.ListingDetail{
		{CardID: "A1", Area: floatPtr(54.5), NumberRooms: "2", Furniture: boolPtr(true), Condition: "Евроремонт", Date: "2024-11-21"},
		{CardID: "B2", Furniture: boolPtr(false)},
		{CardID: "C3"},
	}

	if err := WriteDetails(path, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadDetails(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := map[string]bool{"A1": true, "B2": true, "C3": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for _, d := range got {
		if !want[d.CardID] {
			t.Fatalf("unexpected card id %q", d.CardID)
		}
	}

	if got[0].Area == nil || *got[0].Area != 54.5 {
		t.Fatalf("area not preserved: %v", got[0].Area)
	}
	if got[0].Furniture == nil || !*got[0].Furniture {
		t.Fatalf("furniture=true not preserved")
	}
	if got[1].Furniture == nil || *got[1].Furniture {
		t.Fatalf("furniture=false not preserved")
	}
	if got[2].Furniture != nil {
		t.Fatalf("unknown furniture should stay unknown")
	}
}

func TestReadSummaries_BOMHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported.csv")

	// Spreadsheet exports prepend a UTF-8 BOM to the header line.
	data := []byte("\ufefftitle,url,card_id\nКвартира,https://www.olx.uz/d/obyavlenie/x-IDAb1.html,Ab1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	got, err := ReadSummaries(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Title != "Квартира" {
		t.Fatalf("BOM-prefixed header column not resolved: %+v", got[0])
	}
	if got[0].CardID != "Ab1" {
		t.Fatalf("unexpected card id %q", got[0].CardID)
	}
}

func TestWriteOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.csv")

	first := []models.ListingDetail{{CardID: "A1"}, {CardID: "B2"}}
	if err := WriteDetails(path, first); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	second := []models.ListingDetail{{CardID: "C3"}}
	if err := WriteDetails(path, second); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	got, err := ReadDetails(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 1 || got[0].CardID != "C3" {
		t.Fatalf("expected wholesale overwrite, got %+v", got)
	}
}

func TestListCSVFiles_SkipsCleaned(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"yunusabad.csv", "yunusabad_cleaned.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("card_id\n"), 0644); err != nil {
			t.Fatalf("fixture write failed: %v", err)
		}
	}

	files, err := ListCSVFiles(dir, "_cleaned")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "yunusabad.csv" {
		t.Fatalf("unexpected files %v", files)
	}
}
