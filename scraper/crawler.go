package scraper

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"olx_harvester/config"
	"olx_harvester/httputil"
	"olx_harvester/models"
	"olx_harvester/storage"
)

const listingPathTemplate = "%s/nedvizhimost/kvartiry/arenda-dolgosrochnaya/tashkent/?search[district_id]=%d&currency=UZS&page=%d"

// Crawler walks a district's result pages sequentially until the site runs
// out of listings: a non-2xx status, a transport error or a page with zero
// parseable cards all end the district benignly, keeping what accumulated.
type Crawler struct {
	cfg       config.EngineConfig
	clients   *httputil.Clients
	extractor *Extractor
	baseURL   string
	outDir    string
}

func NewCrawler(cfg config.EngineConfig, clients *httputil.Clients, baseURL, outDir string) (*Crawler, error) {
	extractor, err := NewExtractor(baseURL)
	if err != nil {
		return nil, err
	}
	return &Crawler{
		cfg:       cfg,
		clients:   clients,
		extractor: extractor,
		baseURL:   baseURL,
		outDir:    outDir,
	}, nil
}

// HarvestDistrict crawls one district and overwrites its summary file with
// the full accumulated set. Each pass is authoritative for the district; no
// merge with previous runs happens.
func (c *Crawler) HarvestDistrict(ctx context.Context, d models.District) (models.CrawlStats, error) {
	stats := models.CrawlStats{District: d.Name}
	var results []models.ListingSummary

	for page := 1; page <= c.cfg.MaxPages; page++ {
		pageURL := fmt.Sprintf(listingPathTemplate, c.baseURL, d.ID, page)
		log.Printf("[%s] Fetching page %d", d.Name, page)

		rows, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			// Past-the-last-page requests fail on this site; treat any
			// request failure as end of results, not a hard error.
			log.Printf("[%s] Page %d: %v, stopping", d.Name, page, err)
			break
		}
		stats.PagesSeen++

		var valid int
		for _, row := range rows {
			if row.URL == "" || row.CardID == "" {
				stats.Dropped++
				continue
			}
			row.DistrictID = d.ID
			row.DistrictName = d.Name
			results = append(results, row)
			valid++
		}
		log.Printf("[%s] Page %d: %d listings", d.Name, page, valid)

		if valid == 0 {
			break
		}
		stats.Listings += valid

		if page < c.cfg.MaxPages {
			if err := sleepBetween(ctx, c.cfg.MinDelay, c.cfg.MaxDelay); err != nil {
				break
			}
		}
	}

	outPath := filepath.Join(c.outDir, d.Name+".csv")
	if err := storage.WriteSummaries(outPath, results); err != nil {
		return stats, fmt.Errorf("save %s: %w", d.Name, err)
	}
	log.Printf("[%s] Saved %d rows to %s", d.Name, len(results), outPath)
	return stats, nil
}

func (c *Crawler) fetchPage(ctx context.Context, pageURL string) ([]models.ListingSummary, error) {
	req, err := c.clients.NewRequest(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.clients.Crawl.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	return c.extractor.Extract(resp.Body, time.Now())
}

// sleepBetween waits a uniformly random duration in [min, max], returning
// early if the context ends.
func sleepBetween(ctx context.Context, min, max time.Duration) error {
	delay := min
	if max > min {
		delay = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
