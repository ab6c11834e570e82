// Package prefs persists the small set of operator preferences that
// survive a restart: the structured filter set, the scroll mode, the
// deduplication flag, and the detail panel height. Everything else
// (most importantly the event buffer) dies with the process.
package prefs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sqlscope/sqlscope/internal/filter"

	_ "modernc.org/sqlite"
)

// Preference keys.
const (
	keyFilters      = "filters"
	keyScrollMode   = "scroll_mode"
	keyDedup        = "dedup"
	keyDetailHeight = "detail_height"
)

// MinDetailHeight is the smallest usable detail panel height in pixels.
const MinDetailHeight = 120

// Store is a SQLite-backed key/value preference store.
type Store struct {
	path string
	conn *sql.DB
}

// Open opens (creating if needed) the preference database at path.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}

	if _, err := conn.Exec(
		`CREATE TABLE IF NOT EXISTS prefs (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating preferences schema: %w", err)
	}

	return &Store{path: path, conn: conn}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) set(key, value string) error {
	_, err := s.conn.Exec(
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}

// get returns the stored value, or "" when the key was never saved.
func (s *Store) get(key string) (string, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading preference %s: %w", key, err)
	}
	return value, nil
}

// SaveConditions stores the filter set as a JSON array.
func (s *Store) SaveConditions(conds []filter.Condition) error {
	data, err := json.Marshal(conds)
	if err != nil {
		return fmt.Errorf("encoding filter set: %w", err)
	}
	return s.set(keyFilters, string(data))
}

// LoadConditions returns the stored filter set, or nil when none was
// saved. A corrupt value is treated as absent rather than failing
// startup.
func (s *Store) LoadConditions() ([]filter.Condition, error) {
	raw, err := s.get(keyFilters)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var conds []filter.Condition
	if err := json.Unmarshal([]byte(raw), &conds); err != nil {
		return nil, nil
	}
	return conds, nil
}

// SaveScrollMode stores the scroll mode string ("on", "off", "smart").
func (s *Store) SaveScrollMode(mode string) error {
	return s.set(keyScrollMode, mode)
}

// LoadScrollMode returns the stored scroll mode, or "" when unset.
func (s *Store) LoadScrollMode() (string, error) {
	return s.get(keyScrollMode)
}

// SaveDedup stores the deduplication flag.
func (s *Store) SaveDedup(enabled bool) error {
	return s.set(keyDedup, strconv.FormatBool(enabled))
}

// LoadDedup returns the stored deduplication flag; defaults to false.
func (s *Store) LoadDedup() (bool, error) {
	raw, err := s.get(keyDedup)
	if err != nil {
		return false, err
	}
	return raw == "true", nil
}

// SaveDetailHeight stores the detail panel height in pixels as given.
// Clamping happens at read time, against the viewport of the moment.
func (s *Store) SaveDetailHeight(px int) error {
	return s.set(keyDetailHeight, strconv.Itoa(px))
}

// LoadDetailHeight returns the stored panel height clamped to
// [MinDetailHeight, 80% of viewportHeight]. An unset or unparseable
// value yields the minimum.
func (s *Store) LoadDetailHeight(viewportHeight int) (int, error) {
	raw, err := s.get(keyDetailHeight)
	if err != nil {
		return MinDetailHeight, err
	}
	px, convErr := strconv.Atoi(raw)
	if raw == "" || convErr != nil {
		px = MinDetailHeight
	}
	return ClampDetailHeight(px, viewportHeight), nil
}

// ClampDetailHeight bounds a panel height to [MinDetailHeight, 80% of
// the viewport height].
func ClampDetailHeight(px, viewportHeight int) int {
	max := viewportHeight * 8 / 10
	if max < MinDetailHeight {
		max = MinDetailHeight
	}
	if px < MinDetailHeight {
		return MinDetailHeight
	}
	if px > max {
		return max
	}
	return px
}
