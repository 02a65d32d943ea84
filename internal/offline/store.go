// Package offline implements the client-side durable cache that lets the
// app keep working without connectivity: a SQLite store holding the last
// fetched plant snapshot, downloaded images, the queue of mutations made
// while offline, and sync bookkeeping. The cache is never authoritative;
// every successful full fetch replaces the plant snapshot wholesale.
package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Meta keys used in the sync_meta partition.
const (
	MetaLastSync = "lastSync"
	MetaDeviceID = "deviceId"
)

// ErrPlantNotCached is returned when a plant id is missing from the local
// snapshot.
var ErrPlantNotCached = errors.New("plant not cached")

// CachedPlant is the reduced local projection of a user plant: identifying
// fields plus the resolved effective interval, which is all the garden
// screen needs to render due-day buckets offline.
type CachedPlant struct {
	ID                        int64
	GardenID                  int64
	Name                      string
	Nickname                  string
	ImageURL                  string
	HealthStatus              string
	EffectiveWateringInterval int
	LastWateredAt             time.Time
	NextWateringAt            time.Time
}

// Store is the SQLite-backed offline cache. One Store is opened per process
// and shared across all operations; each logical operation runs in its own
// transaction so concurrent callers cannot tear a partition.
type Store struct {
	db *sql.DB
	// HTTPClient fetches images for the image partition. Tests swap it for
	// one pointing at a fixture server.
	HTTPClient *http.Client
}

const schema = `
CREATE TABLE IF NOT EXISTS plants (
	id                          INTEGER PRIMARY KEY,
	garden_id                   INTEGER NOT NULL,
	name                        TEXT NOT NULL,
	nickname                    TEXT NOT NULL DEFAULT '',
	image_url                   TEXT NOT NULL DEFAULT '',
	health_status               TEXT NOT NULL DEFAULT 'healthy',
	effective_watering_interval INTEGER NOT NULL,
	last_watered_at             TEXT NOT NULL,
	next_watering_at            TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
	url       TEXT PRIMARY KEY,
	body      BLOB NOT NULL,
	cached_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pending_actions (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	plant_id   INTEGER NOT NULL,
	data       TEXT,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sync_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Open opens (or creates) the offline cache at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open: empty db path")
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: schema: %w", err)
	}
	return &Store{
		db:         db,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SavePlants atomically replaces the entire local snapshot with list and
// records the sync time. Clear-then-insert inside one transaction means the
// cache never holds a mix of two server snapshots, and calling it twice
// with the same list is idempotent.
func (s *Store) SavePlants(ctx context.Context, list []CachedPlant, now time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM plants`); err != nil {
			return fmt.Errorf("clear plants: %w", err)
		}
		const q = `INSERT INTO plants
		           (id, garden_id, name, nickname, image_url, health_status, effective_watering_interval, last_watered_at, next_watering_at)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		for _, p := range list {
			if _, err := tx.ExecContext(ctx, q,
				p.ID, p.GardenID, p.Name, p.Nickname, p.ImageURL, p.HealthStatus,
				p.EffectiveWateringInterval, fmtTime(p.LastWateredAt), fmtTime(p.NextWateringAt)); err != nil {
				return fmt.Errorf("insert plant %d: %w", p.ID, err)
			}
		}
		const meta = `INSERT INTO sync_meta (key, value) VALUES (?, ?)
		              ON CONFLICT(key) DO UPDATE SET value = excluded.value`
		if _, err := tx.ExecContext(ctx, meta, MetaLastSync, fmtTime(now)); err != nil {
			return fmt.Errorf("record last sync: %w", err)
		}
		return nil
	})
}

// Plants returns the current full snapshot in next-due order; an empty
// slice when never synced.
func (s *Store) Plants(ctx context.Context) ([]CachedPlant, error) {
	const q = `SELECT id, garden_id, name, nickname, image_url, health_status, effective_watering_interval, last_watered_at, next_watering_at
	           FROM plants ORDER BY next_watering_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []CachedPlant{}
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Plant returns a single cached plant by id.
func (s *Store) Plant(ctx context.Context, id int64) (*CachedPlant, error) {
	const q = `SELECT id, garden_id, name, nickname, image_url, health_status, effective_watering_interval, last_watered_at, next_watering_at
	           FROM plants WHERE id = ?`
	p, err := scanPlant(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlantNotCached
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePlant upserts a single record. Used for optimistic local updates
// while offline; the next successful SavePlants supersedes it.
func (s *Store) UpdatePlant(ctx context.Context, p CachedPlant) error {
	const q = `INSERT INTO plants
	           (id, garden_id, name, nickname, image_url, health_status, effective_watering_interval, last_watered_at, next_watering_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON CONFLICT(id) DO UPDATE SET
	             garden_id = excluded.garden_id,
	             name = excluded.name,
	             nickname = excluded.nickname,
	             image_url = excluded.image_url,
	             health_status = excluded.health_status,
	             effective_watering_interval = excluded.effective_watering_interval,
	             last_watered_at = excluded.last_watered_at,
	             next_watering_at = excluded.next_watering_at`
	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.GardenID, p.Name, p.Nickname, p.ImageURL, p.HealthStatus,
		p.EffectiveWateringInterval, fmtTime(p.LastWateredAt), fmtTime(p.NextWateringAt))
	return err
}

// DeletePlant removes a single record from the local snapshot.
func (s *Store) DeletePlant(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM plants WHERE id = ?`, id)
	return err
}

// Meta returns the value stored under key in the sync_meta partition.
func (s *Store) Meta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM sync_meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetMeta stores a bookkeeping value.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	const q = `INSERT INTO sync_meta (key, value) VALUES (?, ?)
	           ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}

type scanner interface {
	Scan(...any) error
}

func scanPlant(s scanner) (CachedPlant, error) {
	var p CachedPlant
	var last, next string
	if err := s.Scan(&p.ID, &p.GardenID, &p.Name, &p.Nickname, &p.ImageURL, &p.HealthStatus,
		&p.EffectiveWateringInterval, &last, &next); err != nil {
		return CachedPlant{}, err
	}
	var err error
	if p.LastWateredAt, err = parseTime(last); err != nil {
		return CachedPlant{}, fmt.Errorf("plant %d last_watered_at: %w", p.ID, err)
	}
	if p.NextWateringAt, err = parseTime(next); err != nil {
		return CachedPlant{}, fmt.Errorf("plant %d next_watering_at: %w", p.ID, err)
	}
	return p, nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
