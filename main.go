package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"olx_harvester/config"
	"olx_harvester/httputil"
	"olx_harvester/logging"
	"olx_harvester/scheduler"
	"olx_harvester/scraper"
	"olx_harvester/storage"
)

var (
	mode      = flag.String("mode", scraper.ModeFull, "Pipeline mode: full, scrape-only, clean-only, details-only, insights")
	maxPages  = flag.Int("max-pages", 0, "Override page cap per district (0 = config value)")
	districts = flag.String("districts", "", "Comma-separated district ids to harvest (empty = all)")
	daemon    = flag.Bool("daemon", false, "Run on a schedule instead of once")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("harvester.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting olx_harvester...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *maxPages > 0 {
		cfg.Crawl.MaxPages = *maxPages
	}
	log.Printf("Loaded %d districts", len(cfg.Districts))

	districtIDs, err := parseDistrictIDs(*districts)
	if err != nil {
		log.Fatalf("Invalid -districts value: %v", err)
	}

	clients := httputil.NewClients(cfg)
	if cfg.Proxy.URL != "" {
		log.Printf("Proxy: %s", cfg.Proxy.URL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	orchestrator, err := scraper.NewOrchestrator(cfg, clients, store)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	if cfg.Postgres.DBURL != "" {
		archive, err := storage.NewPostgresStore(ctx, cfg.Postgres.DBURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer archive.Close()
		orchestrator.SetArchive(archive)
		log.Println("Postgres archive enabled")
	}

	if cfg.Export.Bucket != "" {
		exporter, err := storage.NewDatasetExporter(ctx, cfg.Export)
		if err != nil {
			log.Fatalf("Failed to configure S3 export: %v", err)
		}
		orchestrator.SetExporter(exporter)
		log.Printf("S3 export enabled: %s", cfg.Export.Bucket)
	}

	if !*daemon {
		if err := orchestrator.Run(ctx, *mode, districtIDs); err != nil {
			log.Printf("Run failed: %v", err)
			os.Exit(1)
		}
		log.Println("Run complete")
		return
	}

	sched := scheduler.New(cfg, orchestrator)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
}

func parseDistrictIDs(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
