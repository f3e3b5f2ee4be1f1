// Package store is the freshness store: a per-user, per-domain on-disk record
// of the last successful fetch. It is pure data access — reads never touch the
// network and never fail the caller, and stale records are kept around as the
// offline fallback until a newer successful fetch replaces them.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mpavel/homescreen/internal/logging"
)

const recordExtension = ".json"

// Store reads and writes cache records under a root directory, one JSON file
// per (user, domain). Thread-safe for concurrent refreshes.
type Store struct {
	dir string

	// mu serializes file operations so readers never observe a partial write
	// even on filesystems where rename is not atomic.
	mu sync.RWMutex
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Weather returns the cached weather record for user, or nil when the file is
// missing or unreadable. Corrupt files are treated as a cache miss.
func (s *Store) Weather(user string) *WeatherRecord {
	var rec WeatherRecord
	if !s.read(user, DomainWeather, &rec) {
		return nil
	}
	return &rec
}

// PutWeather atomically replaces user's weather record. The city key is
// stored lowercased so lookups can match case-insensitively.
func (s *Store) PutWeather(user string, rows []WeatherRow, units, city string) error {
	rec := WeatherRecord{
		TS:    time.Now().Unix(),
		Units: units,
		City:  strings.ToLower(city),
		Rows:  rows,
	}
	return s.write(user, DomainWeather, &rec)
}

// News returns the cached news record for user, or nil on miss or corrupt
// file.
func (s *Store) News(user string) *NewsRecord {
	var rec NewsRecord
	if !s.read(user, DomainNews, &rec) {
		return nil
	}
	return &rec
}

// PutNews atomically replaces user's news record.
func (s *Store) PutNews(user string, rows []NewsRow) error {
	rec := NewsRecord{TS: time.Now().Unix(), Rows: rows}
	return s.write(user, DomainNews, &rec)
}

// DeleteUser removes user's entire cache namespace. Other users are never
// affected. Deleting an absent namespace is not an error.
func (s *Store) DeleteUser(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, "users", sanitize(user))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing cache namespace for %q: %w", user, err)
	}
	return nil
}

func (s *Store) read(user string, domain Domain, out any) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(user, domain))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger := logging.L()
		logger.Debug().
			Str("user", user).
			Str("domain", string(domain)).
			Err(err).
			Msg("discarding corrupt cache record")
		return false
	}
	return true
}

func (s *Store) write(user string, domain Domain, rec any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache record: %w", err)
	}

	path := s.path(user, domain)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating user cache directory: %w", err)
	}

	// Whole-file replace: write a temp file then rename so a concurrent
	// reader sees either the old record or the new one, never a torn write.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing cache record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing cache record: %w", err)
	}
	return nil
}

func (s *Store) path(user string, domain Domain) string {
	return filepath.Join(s.dir, "users", sanitize(user), string(domain)+recordExtension)
}

// sanitize makes a user identity filesystem-safe.
func sanitize(user string) string {
	safe := strings.ReplaceAll(user, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	safe = strings.ReplaceAll(safe, ":", "_")
	return safe
}
