package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"olx_harvester/config"
	"olx_harvester/scraper"
)

// Scheduler drives recurring full harvest runs in daemon mode. A cron
// expression takes precedence over a fixed interval; with neither set
// Start is an error since the daemon would never do anything.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *scraper.Orchestrator
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}
}

func New(cfg *config.Config, orchestrator *scraper.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	switch {
	case s.cfg.Scheduler.Cron != "":
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.runOnce(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()

	case s.cfg.Scheduler.Interval > 0:
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runOnce(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()

	default:
		return fmt.Errorf("daemon mode needs HARVEST_CRON or HARVEST_INTERVAL")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// TriggerNow runs a full harvest immediately, outside the schedule.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.orchestrator.Run(ctx, scraper.ModeFull, nil)
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.orchestrator.Run(ctx, scraper.ModeFull, nil); err != nil {
		log.Printf("Scheduled run error: %v", err)
	}
}
