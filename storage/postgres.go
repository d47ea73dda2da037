package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"olx_harvester/models"
)

// PostgresStore is the optional archival sink: merged listings are upserted
// here when DATABASE_URL is configured, so harvest history outlives the
// per-run CSV overwrites.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rental_listings (
		id UUID PRIMARY KEY,
		card_id TEXT UNIQUE NOT NULL,
		title TEXT,
		url TEXT,
		price_value DOUBLE PRECISION,
		price_currency TEXT,
		price_uzs DOUBLE PRECISION,
		area DOUBLE PRECISION,
		number_rooms TEXT,
		furniture BOOLEAN,
		condition TEXT,
		price_per_m2 DOUBLE PRECISION,
		district_id INTEGER,
		district_name TEXT,
		first_seen_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_rental_listings_district ON rental_listings(district_id);
	CREATE INDEX IF NOT EXISTS idx_rental_listings_condition ON rental_listings(condition);
	`
	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// UpsertMerged writes one merged record, keyed by card id. Re-harvesting a
// card refreshes its price fields and bumps updated_at.
func (s *PostgresStore) UpsertMerged(ctx context.Context, m *models.MergedListing) error {
	query := `
		INSERT INTO rental_listings (
			id, card_id, title, url, price_value, price_currency, price_uzs,
			area, number_rooms, furniture, condition, price_per_m2,
			district_id, district_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (card_id) DO UPDATE SET
			title = COALESCE(EXCLUDED.title, rental_listings.title),
			price_value = COALESCE(EXCLUDED.price_value, rental_listings.price_value),
			price_currency = COALESCE(EXCLUDED.price_currency, rental_listings.price_currency),
			price_uzs = COALESCE(EXCLUDED.price_uzs, rental_listings.price_uzs),
			area = COALESCE(EXCLUDED.area, rental_listings.area),
			number_rooms = COALESCE(EXCLUDED.number_rooms, rental_listings.number_rooms),
			furniture = COALESCE(EXCLUDED.furniture, rental_listings.furniture),
			condition = COALESCE(EXCLUDED.condition, rental_listings.condition),
			price_per_m2 = COALESCE(EXCLUDED.price_per_m2, rental_listings.price_per_m2),
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		uuid.New(), m.CardID, nullStr(m.Title), nullStr(m.URL),
		m.PriceValue, nullStr(m.PriceCurrency), m.PriceUZS,
		m.Area, nullStr(m.NumberRooms), m.Furniture, nullStr(m.Condition),
		m.PricePerM2, m.DistrictID, m.DistrictName)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", m.CardID, err)
	}
	return nil
}

// UpsertMergedBatch archives a whole merged set; individual failures are
// counted, not fatal.
func (s *PostgresStore) UpsertMergedBatch(ctx context.Context, merged []models.MergedListing) (int, error) {
	var failed int
	for i := range merged {
		if err := s.UpsertMerged(ctx, &merged[i]); err != nil {
			failed++
		}
	}
	if failed == len(merged) && len(merged) > 0 {
		return failed, fmt.Errorf("all %d upserts failed", failed)
	}
	return failed, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
