package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// HarvestRun is one pipeline invocation recorded in the operational store.
type HarvestRun struct {
	ID            string     `json:"id" db:"id"`
	Mode          string     `json:"mode" db:"mode"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	UnitsTotal    int        `json:"units_total" db:"units_total"`
	UnitsFailed   int        `json:"units_failed" db:"units_failed"`
	ListingsFound int        `json:"listings_found" db:"listings_found"`
	DetailsNew    int        `json:"details_new" db:"details_new"`
	DetailsFailed int        `json:"details_failed" db:"details_failed"`
	ErrorsCount   int        `json:"errors_count" db:"errors_count"`
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// HarvestLog is one log line attached to a run in the operational store.
type HarvestLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     string    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	Unit      string    `json:"unit" db:"unit"`
}

// CrawlStats summarizes one district's summary crawl.
type CrawlStats struct {
	District  string
	PagesSeen int
	Listings  int
	Dropped   int
}

// DetailStats summarizes one district's detail pass. Skipped counts ids
// already present in the output file from a prior run.
type DetailStats struct {
	District   string
	Total      int
	Skipped    int
	Succeeded  int
	Failed     int
	FinalCount int
}

// UnitStats is the per-district aggregate kept in the operational store.
type UnitStats struct {
	Unit          string     `json:"unit" db:"unit"`
	LastRunAt     *time.Time `json:"last_run_at" db:"last_run_at"`
	LastRunStatus string     `json:"last_run_status" db:"last_run_status"`
	TotalListings int        `json:"total_listings" db:"total_listings"`
	TotalDetails  int        `json:"total_details" db:"total_details"`
}
