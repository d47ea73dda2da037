package services

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"olx_harvester/models"
	"olx_harvester/storage"
)

// Cleaner removes junk rows from raw district summary files before the
// detail pass. OLX renders some cards twice, once without a price block;
// only the duplicate occurrences that carry no price at all are dropped.
type Cleaner struct {
	inDir  string
	outDir string
}

func NewCleaner(inDir, outDir string) *Cleaner {
	return &Cleaner{inDir: inDir, outDir: outDir}
}

// CleanResult reports one cleaning pass across all district files.
type CleanResult struct {
	Processed   int
	RowsRemoved int
	Errors      []string
}

// ProcessAll cleans every raw district file, writing <unit>_cleaned.csv to
// the output directory. A failing file is recorded and skipped.
func (c *Cleaner) ProcessAll() (CleanResult, error) {
	var res CleanResult

	files, err := storage.ListCSVFiles(c.inDir, "_cleaned")
	if err != nil {
		return res, fmt.Errorf("list %s: %w", c.inDir, err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no district files in %s", c.inDir)
	}

	for _, file := range files {
		unit := strings.TrimSuffix(filepath.Base(file), ".csv")
		rows, removed, err := c.CleanFile(file)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", unit, err))
			log.Printf("[cleaner] %s: %v", unit, err)
			continue
		}

		outPath := filepath.Join(c.outDir, unit+"_cleaned.csv")
		if err := storage.WriteSummaries(outPath, rows); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", unit, err))
			continue
		}

		res.Processed++
		res.RowsRemoved += removed
		log.Printf("[cleaner] %s: %d rows removed, %d kept", unit, removed, len(rows))
	}

	return res, nil
}

// CleanFile drops the priceless duplicates from one summary file and
// returns the surviving rows.
func (c *Cleaner) CleanFile(path string) ([]models.ListingSummary, int, error) {
	rows, err := storage.ReadSummaries(path)
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.CardID]++
	}

	kept := make([]models.ListingSummary, 0, len(rows))
	var removed int
	for _, r := range rows {
		if counts[r.CardID] > 1 && r.PriceRaw == "" && r.PriceValue == nil {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed, nil
}
