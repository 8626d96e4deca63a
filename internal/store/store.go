// Package store persists the journal in a single-file SQLite database.
// One connection, WAL mode. All writes notify subscribers per collection so
// presentation layers can refresh without polling.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
)

// Store is the local journal database.
type Store struct {
	db     *sql.DB
	dbPath string

	notifier *notifier
}

// Open initializes the SQLite database at the given path, creating the
// parent directory and schema as needed.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("Opening journal store at %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreDebug("Failed to set sqlite foreign_keys=ON: %v", err)
	}

	s := &Store{db: db, dbPath: path, notifier: newNotifier()}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.StoreDebug("Schema initialized")
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		recorded_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_recorded ON entries(recorded_at);

	CREATE TABLE IF NOT EXISTS entry_tags (
		entry_id TEXT NOT NULL,
		category TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY(entry_id, category, value)
	);

	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		entry_id TEXT NOT NULL,
		lens TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		content TEXT NOT NULL,
		token_count INTEGER NOT NULL DEFAULT 0,
		cost_usd REAL NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_entry ON analyses(entry_id);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		analysis_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_analysis ON conversations(analysis_id);

	CREATE TABLE IF NOT EXISTS messages (
		conversation_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		PRIMARY KEY(conversation_id, seq)
	);

	CREATE TABLE IF NOT EXISTS symbols (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		meaning TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT '',
		valence TEXT NOT NULL DEFAULT '',
		related_symbol_ids TEXT NOT NULL DEFAULT '[]',
		frequency INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name COLLATE NOCASE);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	logging.StoreDebug("Closing journal store")
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// storageErr wraps a driver failure so callers can match
// journal.ErrStorageUnavailable while keeping the cause in the message.
func storageErr(op string, err error) error {
	logging.Get(logging.CategoryStore).Error("%s: %v", op, err)
	return fmt.Errorf("%s: %w: %v", op, journal.ErrStorageUnavailable, err)
}

// Stats holds per-collection row counts.
type Stats struct {
	Entries       int `json:"entries"`
	Analyses      int `json:"analyses"`
	Conversations int `json:"conversations"`
	Symbols       int `json:"symbols"`
}

// Stats returns row counts for every collection.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	rows := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM entries", &st.Entries},
		{"SELECT COUNT(*) FROM analyses", &st.Analyses},
		{"SELECT COUNT(*) FROM conversations", &st.Conversations},
		{"SELECT COUNT(*) FROM symbols", &st.Symbols},
	}
	for _, r := range rows {
		if err := s.db.QueryRow(r.query).Scan(r.dst); err != nil {
			return Stats{}, storageErr("stats", err)
		}
	}
	return st, nil
}
