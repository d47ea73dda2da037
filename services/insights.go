package services

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"olx_harvester/models"
	"olx_harvester/storage"
)

// localCurrency is the raw currency label the site uses for sum-denominated
// prices; anything else is assumed USD-denominated.
const localCurrency = "сум"

// conditionNotSpecified stands in for listings whose detail page carries no
// renovation label, so they still form an aggregation bucket.
const conditionNotSpecified = "Not Specified"

// InsightService joins the summary and detail record sets on card id and
// aggregates rental price per square meter.
type InsightService struct {
	cleanedDir string
	detailsDir string
	usdToUZS   float64
}

func NewInsightService(cleanedDir, detailsDir string, usdToUZS float64) *InsightService {
	return &InsightService{
		cleanedDir: cleanedDir,
		detailsDir: detailsDir,
		usdToUZS:   usdToUZS,
	}
}

// MergeDistrict inner-joins one district's detail records with its cleaned
// summaries. Cards present on only one side are dropped, like any
// relational inner join.
func (s *InsightService) MergeDistrict(unit string) ([]models.MergedListing, error) {
	summaries, err := storage.ReadSummaries(filepath.Join(s.cleanedDir, unit+"_cleaned.csv"))
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	details, err := storage.ReadDetails(filepath.Join(s.detailsDir, unit+"_cards_details.csv"))
	if err != nil {
		return nil, fmt.Errorf("load details: %w", err)
	}

	byID := make(map[string]models.ListingDetail, len(details))
	for _, d := range details {
		byID[d.CardID] = d
	}

	var merged []models.MergedListing
	for _, sum := range summaries {
		d, ok := byID[sum.CardID]
		if !ok {
			continue
		}
		merged = append(merged, s.merge(sum, d))
	}
	return merged, nil
}

// MergeAll merges every district that has both input files; missing or
// unreadable districts are reported, not fatal.
func (s *InsightService) MergeAll(districts []models.District) ([]models.MergedListing, []string) {
	var all []models.MergedListing
	var errs []string
	for _, d := range districts {
		merged, err := s.MergeDistrict(d.Name)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", d.Name, err))
			log.Printf("[insights] Skipping %s: %v", d.Name, err)
			continue
		}
		all = append(all, merged...)
	}
	return all, errs
}

func (s *InsightService) merge(sum models.ListingSummary, d models.ListingDetail) models.MergedListing {
	m := models.MergedListing{
		CardID:        sum.CardID,
		Title:         sum.Title,
		URL:           sum.URL,
		PriceValue:    sum.PriceValue,
		PriceCurrency: sum.PriceCurrency,
		Area:          d.Area,
		NumberRooms:   d.NumberRooms,
		Furniture:     d.Furniture,
		Condition:     d.Condition,
		DistrictID:    sum.DistrictID,
		DistrictName:  sum.DistrictName,
	}

	if sum.PriceValue != nil {
		uzs := *sum.PriceValue
		if sum.PriceCurrency != localCurrency {
			uzs *= s.usdToUZS
		}
		m.PriceUZS = &uzs

		if d.Area != nil && *d.Area > 0 {
			perM2 := uzs / *d.Area
			m.PricePerM2 = &perM2
		}
	}
	return m
}

// ConditionStat is the aggregate for one renovation-condition bucket.
type ConditionStat struct {
	Condition  string
	Count      int
	AvgPerM2   float64
	TotalPerM2 float64
}

// Report summarizes a merged dataset.
type Report struct {
	TotalListings  int
	WithPricePerM2 int
	ByCondition    []ConditionStat
	ByDistrict     map[string]int
}

// Generate computes mean price per square meter grouped by renovation
// condition across the merged set.
func (s *InsightService) Generate(merged []models.MergedListing) *Report {
	report := &Report{ByDistrict: make(map[string]int)}
	report.TotalListings = len(merged)

	buckets := make(map[string]*ConditionStat)
	for _, m := range merged {
		report.ByDistrict[m.DistrictName]++

		if m.PricePerM2 == nil {
			continue
		}
		report.WithPricePerM2++

		cond := m.Condition
		if cond == "" {
			cond = conditionNotSpecified
		}
		b, ok := buckets[cond]
		if !ok {
			b = &ConditionStat{Condition: cond}
			buckets[cond] = b
		}
		b.Count++
		b.TotalPerM2 += *m.PricePerM2
	}

	for _, b := range buckets {
		b.AvgPerM2 = b.TotalPerM2 / float64(b.Count)
		report.ByCondition = append(report.ByCondition, *b)
	}
	sort.Slice(report.ByCondition, func(i, j int) bool {
		return report.ByCondition[i].AvgPerM2 > report.ByCondition[j].AvgPerM2
	})

	return report
}

// Print writes the report to stdout.
func (s *InsightService) Print(r *Report) {
	sep := strings.Repeat("=", 60)

	fmt.Println(sep)
	fmt.Println("RENTAL PRICE INSIGHTS")
	fmt.Println(sep)
	fmt.Printf("Merged listings:      %d\n", r.TotalListings)
	fmt.Printf("With price per m²:    %d\n", r.WithPricePerM2)

	fmt.Println("\nAverage price per m² (UZS) by condition:")
	if len(r.ByCondition) == 0 {
		fmt.Println("  no priced listings")
	}
	for _, b := range r.ByCondition {
		fmt.Printf("  %-25s %12.0f  (%d listings)\n", b.Condition, b.AvgPerM2, b.Count)
	}

	if len(r.ByDistrict) > 0 {
		fmt.Println("\nListings by district:")
		names := make([]string, 0, len(r.ByDistrict))
		for name := range r.ByDistrict {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-25s %d\n", name, r.ByDistrict[name])
		}
	}
	fmt.Println(sep)
}
