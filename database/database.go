package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
	"github.com/sirupsen/logrus"
)

// Store is the bot's durable state: requirement policies, verified name
// mappings, pending manual-review entries, logged dungeon counters and
// the profile blacklist. In-flight verification sessions are not stored
// here; they are in-memory only and do not survive a restart.
type Store struct {
	db *sql.DB
}

// Open initializes the database connection. It takes the database path
// as input and creates the file and schema on first use.
func Open(dbPath string) (*Store, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Ping the database to verify the connection.
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	logrus.Infof("connected to database at %s", dbPath)
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS policies (
			scope_id TEXT PRIMARY KEY,
			config TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS verified_names (
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			verified_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS manual_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			guild_id TEXT NOT NULL,
			scope_id TEXT NOT NULL,
			candidate_name TEXT NOT NULL,
			queue_channel_id TEXT DEFAULT '',
			queue_message_id TEXT DEFAULT '',
			created_at INTEGER NOT NULL,
			UNIQUE(user_id, scope_id)
		);`,
		`CREATE TABLE IF NOT EXISTS dungeon_counters (
			scope_id TEXT NOT NULL,
			category TEXT NOT NULL,
			subject TEXT NOT NULL,
			outcome TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			UNIQUE(scope_id, category, subject, outcome)
		);`,
		`CREATE TABLE IF NOT EXISTS blacklist (
			name TEXT PRIMARY KEY COLLATE NOCASE,
			moderation_ref TEXT NOT NULL,
			reason TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
