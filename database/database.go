package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

// Store wraps the SQLite database holding reaction events and scan state.
// It is safe for concurrent use; the uniqueness invariant on reactions is
// enforced by the schema, not by callers.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at dbPath and ensures the
// schema exists.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Store) initTables() error {
	createReactions := `
    CREATE TABLE IF NOT EXISTS reactions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        message_id TEXT NOT NULL,
        author_id TEXT NOT NULL DEFAULT '',
        emoji TEXT NOT NULL,
        user_id TEXT NOT NULL,
        reacted_at INTEGER NOT NULL,
        removed INTEGER NOT NULL DEFAULT 0,
        updated_at INTEGER NOT NULL,
        UNIQUE(guild_id, message_id, emoji, user_id)
    );`

	if _, err := s.db.Exec(createReactions); err != nil {
		return fmt.Errorf("failed to create reactions table: %w", err)
	}

	createScanState := `
    CREATE TABLE IF NOT EXISTS scan_state (
        guild_id TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        last_scanned_message_id TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL,
        updated_at INTEGER NOT NULL,
        PRIMARY KEY (guild_id, channel_id)
    );`

	if _, err := s.db.Exec(createScanState); err != nil {
		return fmt.Errorf("failed to create scan_state table: %w", err)
	}

	// Indexes for the report and overview query paths.
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_reactions_guild_time ON reactions(guild_id, reacted_at);",
		"CREATE INDEX IF NOT EXISTS idx_reactions_guild_emoji ON reactions(guild_id, emoji);",
		"CREATE INDEX IF NOT EXISTS idx_reactions_guild_channel ON reactions(guild_id, channel_id);",
	}

	for _, indexQuery := range indexes {
		if _, err := s.db.Exec(indexQuery); err != nil {
			log.Printf("Warning: failed to create index: %v", err)
		}
	}

	return nil
}
