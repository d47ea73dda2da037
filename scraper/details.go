package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"olx_harvester/config"
	"olx_harvester/httputil"
	"olx_harvester/models"
	"olx_harvester/normalize"
	"olx_harvester/storage"
)

const (
	detailParamsSelector = "div[data-testid='ad-parameters-container']"
	detailPostedSelector = "span[data-testid='ad-posted-at']"

	labelRooms     = "Количество комнат"
	labelArea      = "Общая площадь"
	labelFurniture = "Меблирована"
	labelCondition = "Ремонт"
)

// DetailFetcher fetches each listing's own page and collects the fixed
// detail record set, checkpointing the output file as it goes. The output
// file doubles as the resume marker: any card id already present is
// permanently done and never re-fetched.
type DetailFetcher struct {
	cfg     config.EngineConfig
	clients *httputil.Clients
	inDir   string
	outDir  string
}

func NewDetailFetcher(cfg config.EngineConfig, clients *httputil.Clients, inDir, outDir string) *DetailFetcher {
	return &DetailFetcher{
		cfg:     cfg,
		clients: clients,
		inDir:   inDir,
		outDir:  outDir,
	}
}

// ProcessAll runs the detail pass over every district file in the input
// directory. An empty input directory is an error; a failing district is
// recorded in the returned error list and does not stop the rest.
func (f *DetailFetcher) ProcessAll(ctx context.Context) ([]models.DetailStats, []string, error) {
	files, err := storage.ListCSVFiles(f.inDir, "")
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", f.inDir, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no district files in %s", f.inDir)
	}

	var all []models.DetailStats
	var errs []string
	for _, file := range files {
		stats, err := f.Run(ctx, file)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", stats.District, err))
			log.Printf("[%s] Detail pass failed: %v", stats.District, err)
		}
		all = append(all, stats)
		if ctx.Err() != nil {
			break
		}
	}
	return all, errs, nil
}

// Run processes one district input file in input order. Already-done ids are
// skipped; a failed fetch counts and moves on with no retry in this run; the
// result set (prior + new) is rewritten every SaveInterval processed items
// and after the last one, so a rerun is strictly additive.
func (f *DetailFetcher) Run(ctx context.Context, inputPath string) (models.DetailStats, error) {
	unit := unitName(inputPath)
	stats := models.DetailStats{District: unit}

	inputs, err := storage.ReadSummaries(inputPath)
	if err != nil {
		return stats, fmt.Errorf("load input: %w", err)
	}
	stats.Total = len(inputs)

	outPath := filepath.Join(f.outDir, unit+"_cards_details.csv")
	details, done, err := loadPrior(outPath)
	if err != nil {
		return stats, fmt.Errorf("load prior output: %w", err)
	}
	if len(done) > 0 {
		log.Printf("[%s] Resuming: %d cards already done", unit, len(done))
	}

	saveEvery := f.cfg.SaveInterval
	if saveEvery <= 0 {
		saveEvery = 50
	}

	var processed int
	for i, row := range inputs {
		if row.CardID == "" {
			continue
		}
		if done[row.CardID] {
			stats.Skipped++
			continue
		}
		if ctx.Err() != nil {
			break
		}

		detail, err := f.fetchDetail(ctx, row.CardID, row.URL)
		if err != nil {
			stats.Failed++
			log.Printf("[%s] Card %s: %v", unit, row.CardID, err)
		} else {
			details = append(details, *detail)
			done[row.CardID] = true
			stats.Succeeded++
		}

		processed++
		if processed%saveEvery == 0 {
			if err := storage.WriteDetails(outPath, details); err != nil {
				return stats, fmt.Errorf("checkpoint: %w", err)
			}
			log.Printf("[%s] Progress saved: %d cards", unit, len(details))
		}

		if i < len(inputs)-1 {
			if err := sleepBetween(ctx, f.cfg.MinDelay, f.cfg.MaxDelay); err != nil {
				break
			}
		}
	}

	if err := storage.WriteDetails(outPath, details); err != nil {
		return stats, fmt.Errorf("final save: %w", err)
	}
	stats.FinalCount = len(details)

	log.Printf("[%s] Details: total=%d skipped=%d succeeded=%d failed=%d final=%d",
		unit, stats.Total, stats.Skipped, stats.Succeeded, stats.Failed, stats.FinalCount)
	return stats, nil
}

func (f *DetailFetcher) fetchDetail(ctx context.Context, cardID, rawURL string) (*models.ListingDetail, error) {
	req, err := f.clients.NewRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.clients.Detail.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	return parseDetailPage(resp.Body, cardID, time.Now())
}

// parseDetailPage scans the ad parameters container for the fixed label
// set. A label that never occurs leaves its field absent.
func parseDetailPage(r io.Reader, cardID string, now time.Time) (*models.ListingDetail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	detail := &models.ListingDetail{CardID: cardID}

	doc.Find(detailParamsSelector).Find("p").Each(func(_ int, p *goquery.Selection) {
		text := normalize.CollapseSpace(p.Text())
		switch {
		case strings.HasPrefix(text, labelRooms):
			detail.NumberRooms = labelValue(text)
		case strings.HasPrefix(text, labelArea):
			detail.Area = normalize.ParseArea(labelValue(text))
		case strings.HasPrefix(text, labelFurniture):
			furnished := strings.EqualFold(labelValue(text), "да")
			detail.Furniture = &furnished
		case strings.HasPrefix(text, labelCondition):
			detail.Condition = labelValue(text)
		}
	})

	posted := normalize.CollapseSpace(doc.Find(detailPostedSelector).Text())
	if posted != "" {
		if date, _ := normalize.ParseListingDate(posted, now); date != nil {
			detail.Date = date.Format("2006-01-02")
		}
	}

	return detail, nil
}

// labelValue returns the text after the last colon ("Общая площадь: 54 м²"
// -> "54 м²"); labels without a colon yield the whole text.
func labelValue(text string) string {
	if i := strings.LastIndex(text, ":"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return strings.TrimSpace(text)
}

// loadPrior reads a previous output file if one exists and builds the
// done-set from its card ids.
func loadPrior(outPath string) ([]models.ListingDetail, map[string]bool, error) {
	done := make(map[string]bool)
	details, err := storage.ReadDetails(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, done, nil
		}
		return nil, nil, err
	}
	for _, d := range details {
		done[d.CardID] = true
	}
	return details, done, nil
}

// unitName derives the district name from an input file path, trimming the
// cleaning stage suffix ("yunusabad_cleaned.csv" -> "yunusabad").
func unitName(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), ".csv")
	return strings.TrimSuffix(stem, "_cleaned")
}
