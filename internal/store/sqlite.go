package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PricePulse/internal/model"
)

// SQLiteRawStore persists raw price samples to a SQLite database.
type SQLiteRawStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRawStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRawStore(dbPath string) (*SQLiteRawStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers (e.g. ad-hoc queries on the raw log) don't block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteRawStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite raw store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteRawStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS raw_prices (
			timestamp TEXT NOT NULL,
			symbol    TEXT NOT NULL,
			price     REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_raw_symbol_ts ON raw_prices(symbol, timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Append writes one tick's samples in a single transaction.
func (s *SQLiteRawStore) Append(samples []model.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	for _, smp := range samples {
		if _, err := tx.Exec(
			"INSERT INTO raw_prices (timestamp, symbol, price) VALUES (?, ?, ?)",
			smp.Timestamp.UTC().Format(time.RFC3339Nano), smp.Symbol, smp.Price,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert raw price: %w", err)
		}
	}
	return tx.Commit()
}

// Purge deletes all raw samples. Scheduled daily once the rollups have
// captured everything worth keeping.
func (s *SQLiteRawStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM raw_prices"); err != nil {
		return fmt.Errorf("purge raw prices: %w", err)
	}
	log.Println("[INFO] purged raw price data")
	return nil
}

func (s *SQLiteRawStore) Close() error {
	log.Println("[INFO] closing sqlite raw store")
	return s.db.Close()
}
