// Package session persists named view-state sessions in a SQLite database
// under the XDG state directory, so a browsing session on a large tree can
// be resumed later.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/treebrowse/pkg/config"
)

// ErrNotFound is returned when a named session does not exist.
var ErrNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	name       TEXT PRIMARY KEY,
	data_hash  TEXT NOT NULL,
	state      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Info describes one stored session.
type Info struct {
	Name      string
	DataHash  string
	UpdatedAt time.Time
}

// Store is a SQLite-backed session store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a session store at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the store at its XDG state location.
func OpenDefault() (*Store, error) {
	dir := config.StateDir()
	if dir == "" {
		return nil, fmt.Errorf("cannot determine state directory")
	}
	return Open(filepath.Join(dir, "sessions.sqlite3"))
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a session under a name. The data hash records which tree
// the state was captured against so a reader can detect mismatches.
func (s *Store) Save(name, dataHash string, state []byte) error {
	if name == "" {
		return fmt.Errorf("session name is required")
	}
	_, err := s.db.Exec(`
		INSERT INTO sessions (name, data_hash, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data_hash = excluded.data_hash,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, name, dataHash, string(state), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save session %q: %w", name, err)
	}
	return nil
}

// Load returns the serialized state and data hash of a named session.
func (s *Store) Load(name string) (state []byte, dataHash string, err error) {
	var raw string
	row := s.db.QueryRow(`SELECT state, data_hash FROM sessions WHERE name = ?`, name)
	if err := row.Scan(&raw, &dataHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, "", fmt.Errorf("load session %q: %w", name, err)
	}
	return []byte(raw), dataHash, nil
}

// List returns all stored sessions, most recently updated first.
func (s *Store) List() ([]Info, error) {
	rows, err := s.db.Query(`SELECT name, data_hash, updated_at FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var ts string
		if err := rows.Scan(&info.Name, &info.DataHash, &ts); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339, ts)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a named session. Deleting a missing session is not an
// error.
func (s *Store) Delete(name string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	return nil
}
