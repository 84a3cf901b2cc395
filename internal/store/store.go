// Package store persists generated ideas and consumed methodology keys in a
// local SQLite database, so history and consumption survive restarts.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ideaforge/internal/core"
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if necessary) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ideaforge.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	ideasTable := `
	CREATE TABLE IF NOT EXISTS ideas (
		id TEXT PRIMARY KEY,
		payload TEXT,
		generated_at DATETIME,
		deleted INTEGER DEFAULT 0
	);`

	consumedTable := `
	CREATE TABLE IF NOT EXISTS consumed_keys (
		key TEXT PRIMARY KEY,
		consumed_at DATETIME
	);`

	tables := []string{ideasTable, consumedTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveIdea stores a generated idea.
func (s *Store) SaveIdea(idea core.VideoIdea) error {
	payload, err := json.Marshal(idea)
	if err != nil {
		return fmt.Errorf("failed to encode idea: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO ideas (id, payload, generated_at, deleted)
	VALUES (?, ?, ?, 0)`

	_, err = s.db.Exec(query, idea.ID, string(payload), idea.GeneratedAt)
	return err
}

// ListIdeas returns all non-deleted ideas, newest first.
func (s *Store) ListIdeas() ([]core.VideoIdea, error) {
	query := `
	SELECT payload FROM ideas
	WHERE deleted = 0
	ORDER BY generated_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas: %w", err)
	}
	defer rows.Close()

	var ideas []core.VideoIdea
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		var idea core.VideoIdea
		if err := json.Unmarshal([]byte(payload), &idea); err != nil {
			return nil, fmt.Errorf("failed to decode idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

// DeleteIdea soft-deletes an idea so it can later be restored.
func (s *Store) DeleteIdea(id string) error {
	result, err := s.db.Exec(`UPDATE ideas SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result, id)
}

// RestoreIdea clears the deleted flag on an idea.
func (s *Store) RestoreIdea(id string) error {
	result, err := s.db.Exec(`UPDATE ideas SET deleted = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result, id)
}

// Prune hard-deletes the oldest ideas beyond max, counting only non-deleted
// entries toward the cap.
func (s *Store) Prune(max int) error {
	query := `
	DELETE FROM ideas WHERE id IN (
		SELECT id FROM ideas WHERE deleted = 0
		ORDER BY generated_at DESC
		LIMIT -1 OFFSET ?
	)`
	_, err := s.db.Exec(query, max)
	return err
}

// MarkConsumed records a methodology key as used.
func (s *Store) MarkConsumed(key string) error {
	query := `
	INSERT OR REPLACE INTO consumed_keys (key, consumed_at)
	VALUES (?, ?)`
	_, err := s.db.Exec(query, key, time.Now().UTC())
	return err
}

// UnmarkConsumed releases a methodology key back into the pool.
func (s *Store) UnmarkConsumed(key string) error {
	_, err := s.db.Exec(`DELETE FROM consumed_keys WHERE key = ?`, key)
	return err
}

// ConsumedKeys returns the set of used methodology keys.
func (s *Store) ConsumedKeys() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT key FROM consumed_keys`)
	if err != nil {
		return nil, fmt.Errorf("failed to query consumed keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan consumed key: %w", err)
		}
		keys[key] = true
	}
	return keys, rows.Err()
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("idea %s not found", id)
	}
	return nil
}
