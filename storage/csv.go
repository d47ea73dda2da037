package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"olx_harvester/models"
)

var summaryHeader = []string{
	"title", "url", "price_raw", "price_value", "price_currency",
	"location_text", "posted_date_raw", "posted_date", "time_raw",
	"card_id", "district_id", "district_name",
}

var detailHeader = []string{
	"card_id", "area", "number_rooms", "furniture", "condition", "date",
}

// WriteSummaries persists a district's full summary set, replacing any
// previous file. The write goes to a temp file first and is renamed into
// place, so a crash mid-write never corrupts the prior checkpoint.
func WriteSummaries(path string, rows []models.ListingSummary) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, summaryHeader)
	for _, r := range rows {
		records = append(records, []string{
			r.Title,
			r.URL,
			r.PriceRaw,
			formatFloat(r.PriceValue),
			r.PriceCurrency,
			r.LocationText,
			r.PostedDateRaw,
			r.PostedDate,
			r.TimeRaw,
			r.CardID,
			strconv.Itoa(r.DistrictID),
			r.DistrictName,
		})
	}
	return writeAtomic(path, records)
}

// ReadSummaries loads a summary file written by WriteSummaries. Columns are
// resolved by header name so files survive column reordering.
func ReadSummaries(path string) ([]models.ListingSummary, error) {
	records, idx, err := readWithHeader(path)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ListingSummary, 0, len(records))
	for _, rec := range records {
		field := fieldReader(rec, idx)
		r := models.ListingSummary{
			Title:         field("title"),
			URL:           field("url"),
			PriceRaw:      field("price_raw"),
			PriceValue:    parseFloat(field("price_value")),
			PriceCurrency: field("price_currency"),
			LocationText:  field("location_text"),
			PostedDateRaw: field("posted_date_raw"),
			PostedDate:    field("posted_date"),
			TimeRaw:       field("time_raw"),
			CardID:        field("card_id"),
			DistrictName:  field("district_name"),
		}
		r.DistrictID, _ = strconv.Atoi(field("district_id"))
		rows = append(rows, r)
	}
	return rows, nil
}

// WriteDetails persists a district's detail set wholesale, same overwrite
// semantics as WriteSummaries. Furniture is stored as 1/0, empty = unknown.
func WriteDetails(path string, rows []models.ListingDetail) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, detailHeader)
	for _, r := range rows {
		records = append(records, []string{
			r.CardID,
			formatFloat(r.Area),
			r.NumberRooms,
			formatBool(r.Furniture),
			r.Condition,
			r.Date,
		})
	}
	return writeAtomic(path, records)
}

func ReadDetails(path string) ([]models.ListingDetail, error) {
	records, idx, err := readWithHeader(path)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ListingDetail, 0, len(records))
	for _, rec := range records {
		field := fieldReader(rec, idx)
		rows = append(rows, models.ListingDetail{
			CardID:      field("card_id"),
			Area:        parseFloat(field("area")),
			NumberRooms: field("number_rooms"),
			Furniture:   parseBool(field("furniture")),
			Condition:   field("condition"),
			Date:        field("date"),
		})
	}
	return rows, nil
}

// ListCSVFiles returns the CSV files in dir, optionally excluding names with
// the given suffix (used to skip already-cleaned outputs).
func ListCSVFiles(dir, excludeSuffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".csv")
		if excludeSuffix != "" && strings.HasSuffix(stem, excludeSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

func writeAtomic(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readWithHeader(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file, no header", path)
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimPrefix(name, "\ufeff")] = i
	}
	return records[1:], idx, nil
}

func fieldReader(rec []string, idx map[string]int) func(string) string {
	return func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "1"
	}
	return "0"
}

func parseBool(s string) *bool {
	switch s {
	case "1", "true":
		v := true
		return &v
	case "0", "false":
		v := false
		return &v
	}
	return nil
}
