// Package store persists intraday bars in one SQLite file per symbol.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"TickerVault/internal/model"
)

// Config holds the storage layout settings.
type Config struct {
	Dir   string // directory holding the per-symbol database files
	Table string // table name inside each file
}

// Store reads and writes per-symbol time-series tables. Each database file
// is opened for the duration of a single operation and released afterward,
// so no long-lived handle is held.
type Store struct {
	cfg Config
}

// New creates a Store. Symbol databases are created lazily on first write.
func New(cfg Config) *Store {
	if cfg.Table == "" {
		cfg.Table = "price_data"
	}
	return &Store{cfg: cfg}
}

// Path returns the database file for symbol, e.g. data/AAPL_intraday.db.
func (s *Store) Path(symbol string) string {
	return filepath.Join(s.cfg.Dir, strings.ToUpper(symbol)+"_intraday.db")
}

func (s *Store) open(symbol string) (*sql.DB, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", s.Path(symbol))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// EnsureSchema idempotently creates the per-symbol table with a uniqueness
// constraint on timestamp. Re-running it against an existing table is a
// no-op rather than a swallowed creation error.
func (s *Store) EnsureSchema(symbol string) error {
	db, err := s.open(symbol)
	if err != nil {
		return err
	}
	defer db.Close()
	return s.migrate(db)
}

func (s *Store) migrate(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			timestamp INTEGER NOT NULL UNIQUE,
			open      REAL NOT NULL,
			high      REAL NOT NULL,
			low       REAL NOT NULL,
			close     REAL NOT NULL,
			volume    INTEGER NOT NULL,
			symbol    TEXT NOT NULL
		)`, s.cfg.Table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_ts ON %s(timestamp)`, s.cfg.Table, s.cfg.Table),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// InsertIncremental appends bars strictly newer than the latest stored
// timestamp for symbol and returns the number of rows inserted. Re-running
// it with the same bars inserts nothing, which keeps the series free of
// duplicate timestamps without relying on constraint violations.
func (s *Store) InsertIncremental(symbol string, bars []model.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	db, err := s.open(symbol)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := s.migrate(db); err != nil {
		return 0, err
	}

	var max sql.NullInt64
	row := db.QueryRow(fmt.Sprintf(`SELECT MAX(timestamp) FROM %s`, s.cfg.Table))
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("query max timestamp: %w", err)
	}

	fresh := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		if !max.Valid || b.Timestamp.Unix() > max.Int64 {
			fresh = append(fresh, b)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	// The incoming batch itself may contain duplicates of the same minute.
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Timestamp.Before(fresh[j].Timestamp) })

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO %s (timestamp, open, high, low, close, volume, symbol) VALUES (?,?,?,?,?,?,?)`,
		s.cfg.Table))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	var prev int64 = -1
	for _, b := range fresh {
		ts := b.Timestamp.Unix()
		if ts == prev {
			continue
		}
		prev = ts
		if _, err := stmt.Exec(ts, b.Open, b.High, b.Low, b.Close, b.Volume, b.Symbol); err != nil {
			return 0, fmt.Errorf("insert %s: %w", b.Timestamp.Format(time.RFC3339), err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// QueryRange returns all bars for symbol with timestamp in [from, to],
// ascending. A symbol with no database yet yields an empty result.
func (s *Store) QueryRange(symbol string, from, to time.Time) ([]model.PriceBar, error) {
	if _, err := os.Stat(s.Path(symbol)); os.IsNotExist(err) {
		return nil, nil
	}

	db, err := s.open(symbol)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(
		`SELECT timestamp, open, high, low, close, volume, symbol
		 FROM %s WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp ASC`,
		s.cfg.Table), from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	defer rows.Close()

	var out []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		var ts int64
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Symbol); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		b.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}
