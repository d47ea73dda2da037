package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"olx_harvester/config"
	"olx_harvester/httputil"
	"olx_harvester/models"
	"olx_harvester/services"
	"olx_harvester/storage"
)

const (
	ModeFull        = "full"
	ModeScrapeOnly  = "scrape-only"
	ModeCleanOnly   = "clean-only"
	ModeDetailsOnly = "details-only"
	ModeInsights    = "insights"
)

// Orchestrator drives the pipeline stages across all configured districts
// sequentially. One district's failure is recorded and never stops the
// others; every invocation leaves a run record in the operational store.
type Orchestrator struct {
	cfg      *config.Config
	store    *storage.SQLiteStore
	crawler  *Crawler
	details  *DetailFetcher
	cleaner  *services.Cleaner
	insights *services.InsightService

	archive  *storage.PostgresStore
	exporter *storage.DatasetExporter
}

func NewOrchestrator(cfg *config.Config, clients *httputil.Clients, store *storage.SQLiteStore) (*Orchestrator, error) {
	crawler, err := NewCrawler(cfg.Crawl, clients, cfg.BaseURL, cfg.Dirs.Listings)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		crawler:  crawler,
		details:  NewDetailFetcher(cfg.Detail, clients, cfg.Dirs.Cleaned, cfg.Dirs.Details),
		cleaner:  services.NewCleaner(cfg.Dirs.Listings, cfg.Dirs.Cleaned),
		insights: services.NewInsightService(cfg.Dirs.Cleaned, cfg.Dirs.Details, cfg.USDToUZS),
	}, nil
}

// SetArchive attaches the optional Postgres sink for merged records.
func (o *Orchestrator) SetArchive(archive *storage.PostgresStore) {
	o.archive = archive
}

// SetExporter attaches the optional S3 dataset exporter.
func (o *Orchestrator) SetExporter(exporter *storage.DatasetExporter) {
	o.exporter = exporter
}

// Run executes the stages selected by mode over the given district ids
// (empty = all). It returns an error when anything short of full success
// happened, which the CLI maps to a non-zero exit.
func (o *Orchestrator) Run(ctx context.Context, mode string, districtIDs []int) error {
	districts := o.cfg.SelectDistricts(districtIDs)
	if len(districts) == 0 {
		return fmt.Errorf("no districts selected")
	}

	run := &models.HarvestRun{
		ID:        uuid.New().String(),
		Mode:      mode,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := o.store.CreateRun(run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		run.Status = models.RunStatusCompleted
		if run.ErrorsCount > 0 {
			run.Status = models.RunStatusFailed
		}
		if err := o.store.UpdateRun(run); err != nil {
			log.Printf("Warning: could not finalize run record: %v", err)
		}
	}()

	if mode == ModeFull || mode == ModeScrapeOnly {
		o.runScrape(ctx, districts, run)
	}
	if mode == ModeFull || mode == ModeCleanOnly {
		o.runClean(run)
	}
	if mode == ModeFull || mode == ModeDetailsOnly {
		o.runDetails(ctx, run)
	}
	if mode == ModeFull || mode == ModeInsights {
		o.runInsights(ctx, districts, run)
	}

	log.Printf("Run %s (%s): %d units, %d listings, %d details, %d failed details, %d errors",
		run.ID, mode, run.UnitsTotal, run.ListingsFound, run.DetailsNew, run.DetailsFailed, run.ErrorsCount)

	if run.ErrorsCount > 0 {
		return fmt.Errorf("run finished with %d errors", run.ErrorsCount)
	}
	return nil
}

func (o *Orchestrator) runScrape(ctx context.Context, districts []models.District, run *models.HarvestRun) {
	for _, d := range districts {
		run.UnitsTotal++

		stats, err := o.crawler.HarvestDistrict(ctx, d)
		if err != nil {
			run.UnitsFailed++
			run.ErrorsCount++
			o.logUnit(run.ID, models.LogLevelError, d.Name, fmt.Sprintf("scrape failed: %v", err))
			o.recordUnitStats(d.Name, string(models.RunStatusFailed), stats.Listings, 0)
			continue
		}

		run.ListingsFound += stats.Listings
		o.logUnit(run.ID, models.LogLevelInfo, d.Name,
			fmt.Sprintf("scraped %d listings over %d pages (%d dropped)", stats.Listings, stats.PagesSeen, stats.Dropped))
		o.recordUnitStats(d.Name, string(models.RunStatusCompleted), stats.Listings, 0)

		if ctx.Err() != nil {
			return
		}
	}
}

func (o *Orchestrator) runClean(run *models.HarvestRun) {
	res, err := o.cleaner.ProcessAll()
	if err != nil {
		run.ErrorsCount++
		o.logUnit(run.ID, models.LogLevelError, "", fmt.Sprintf("cleaning failed: %v", err))
		return
	}
	run.ErrorsCount += len(res.Errors)
	for _, e := range res.Errors {
		o.logUnit(run.ID, models.LogLevelError, "", "clean: "+e)
	}
	o.logUnit(run.ID, models.LogLevelInfo, "",
		fmt.Sprintf("cleaned %d files, removed %d rows", res.Processed, res.RowsRemoved))
}

func (o *Orchestrator) runDetails(ctx context.Context, run *models.HarvestRun) {
	allStats, unitErrs, err := o.details.ProcessAll(ctx)
	if err != nil {
		run.ErrorsCount++
		o.logUnit(run.ID, models.LogLevelError, "", fmt.Sprintf("detail pass failed: %v", err))
		return
	}
	run.ErrorsCount += len(unitErrs)
	for _, e := range unitErrs {
		o.logUnit(run.ID, models.LogLevelError, "", "details: "+e)
	}

	for _, stats := range allStats {
		run.DetailsNew += stats.Succeeded
		run.DetailsFailed += stats.Failed
		o.logUnit(run.ID, models.LogLevelInfo, stats.District,
			fmt.Sprintf("details: %d new, %d skipped, %d failed, %d total in set",
				stats.Succeeded, stats.Skipped, stats.Failed, stats.FinalCount))
		o.recordUnitStats(stats.District, string(models.RunStatusCompleted), stats.Total, stats.FinalCount)
	}
}

func (o *Orchestrator) runInsights(ctx context.Context, districts []models.District, run *models.HarvestRun) {
	merged, errs := o.insights.MergeAll(districts)
	run.ErrorsCount += len(errs)
	for _, e := range errs {
		o.logUnit(run.ID, models.LogLevelWarn, "", "merge: "+e)
	}
	if len(merged) == 0 {
		o.logUnit(run.ID, models.LogLevelWarn, "", "no merged records to aggregate")
		return
	}

	report := o.insights.Generate(merged)
	o.insights.Print(report)

	if o.archive != nil {
		failed, err := o.archive.UpsertMergedBatch(ctx, merged)
		if err != nil {
			run.ErrorsCount++
			o.logUnit(run.ID, models.LogLevelError, "", fmt.Sprintf("archive: %v", err))
		} else if failed > 0 {
			o.logUnit(run.ID, models.LogLevelWarn, "", fmt.Sprintf("archive: %d of %d upserts failed", failed, len(merged)))
		} else {
			o.logUnit(run.ID, models.LogLevelInfo, "", fmt.Sprintf("archived %d merged records", len(merged)))
		}
	}

	if o.exporter != nil {
		for stage, dir := range map[string]string{
			"listings": o.cfg.Dirs.Listings,
			"cleaned":  o.cfg.Dirs.Cleaned,
			"details":  o.cfg.Dirs.Details,
		} {
			uploaded, uploadErrs := o.exporter.ExportDir(ctx, stage, dir)
			for _, e := range uploadErrs {
				o.logUnit(run.ID, models.LogLevelWarn, "", fmt.Sprintf("export %s: %v", stage, e))
			}
			if uploaded > 0 {
				o.logUnit(run.ID, models.LogLevelInfo, "", fmt.Sprintf("exported %d %s files", uploaded, stage))
			}
		}
	}
}

func (o *Orchestrator) recordUnitStats(unit, status string, listings, details int) {
	if err := o.store.UpdateUnitStats(unit, status, listings, details); err != nil {
		log.Printf("Warning: could not update unit stats for %s: %v", unit, err)
	}
}

func (o *Orchestrator) logUnit(runID string, level models.LogLevel, unit, message string) {
	if unit != "" {
		log.Printf("[%s] %s: %s", level, unit, message)
	} else {
		log.Printf("[%s] %s", level, message)
	}
	if err := o.store.Log(runID, level, message, unit); err != nil {
		log.Printf("Warning: could not persist log line: %v", err)
	}
}
