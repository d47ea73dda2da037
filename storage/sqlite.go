package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"olx_harvester/models"
)

// SQLiteStore keeps operational data: run history, per-run log lines and
// per-district aggregates. Dataset output stays in CSV files; this store is
// for auditing and scheduling only.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id TEXT PRIMARY KEY,
		mode TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		units_total INTEGER DEFAULT 0,
		units_failed INTEGER DEFAULT 0,
		listings_found INTEGER DEFAULT 0,
		details_new INTEGER DEFAULT 0,
		details_failed INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS harvest_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		unit TEXT
	);

	CREATE TABLE IF NOT EXISTS unit_stats (
		unit TEXT PRIMARY KEY,
		last_run_at DATETIME,
		last_run_status TEXT,
		total_listings INTEGER DEFAULT 0,
		total_details INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_logs_run ON harvest_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON harvest_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.HarvestRun) error {
	_, err := s.db.Exec(`
		INSERT INTO harvest_runs (id, mode, started_at, status)
		VALUES (?, ?, ?, ?)`,
		run.ID, run.Mode, run.StartedAt, run.Status)
	return err
}

func (s *SQLiteStore) UpdateRun(run *models.HarvestRun) error {
	_, err := s.db.Exec(`
		UPDATE harvest_runs SET
			finished_at = ?, status = ?, units_total = ?, units_failed = ?,
			listings_found = ?, details_new = ?, details_failed = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.UnitsTotal, run.UnitsFailed,
		run.ListingsFound, run.DetailsNew, run.DetailsFailed, run.ErrorsCount,
		run.ID)
	return err
}

func (s *SQLiteStore) GetRun(id string) (*models.HarvestRun, error) {
	row := s.db.QueryRow(`
		SELECT id, mode, started_at, finished_at, status, units_total, units_failed,
			listings_found, details_new, details_failed, errors_count
		FROM harvest_runs WHERE id = ?`, id)

	var run models.HarvestRun
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.Mode, &run.StartedAt, &finished, &run.Status,
		&run.UnitsTotal, &run.UnitsFailed, &run.ListingsFound,
		&run.DetailsNew, &run.DetailsFailed, &run.ErrorsCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

func (s *SQLiteStore) Log(runID string, level models.LogLevel, message, unit string) error {
	_, err := s.db.Exec(`
		INSERT INTO harvest_logs (run_id, timestamp, level, message, unit)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, unit)
	return err
}

func (s *SQLiteStore) GetRunLogs(runID string) ([]models.HarvestLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, unit
		FROM harvest_logs WHERE run_id = ? ORDER BY timestamp`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.HarvestLog
	for rows.Next() {
		var l models.HarvestLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.Unit); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *SQLiteStore) UpdateUnitStats(unit, status string, listings, details int) error {
	_, err := s.db.Exec(`
		INSERT INTO unit_stats (unit, last_run_at, last_run_status, total_listings, total_details)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(unit) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_run_status = excluded.last_run_status,
			total_listings = excluded.total_listings,
			total_details = excluded.total_details`,
		unit, time.Now(), status, listings, details)
	return err
}

func (s *SQLiteStore) GetUnitStats(unit string) (*models.UnitStats, error) {
	row := s.db.QueryRow(`
		SELECT unit, last_run_at, last_run_status, total_listings, total_details
		FROM unit_stats WHERE unit = ?`, unit)

	var st models.UnitStats
	var lastRun sql.NullTime
	err := row.Scan(&st.Unit, &lastRun, &st.LastRunStatus, &st.TotalListings, &st.TotalDetails)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastRun.Valid {
		st.LastRunAt = &lastRun.Time
	}
	return &st, nil
}
