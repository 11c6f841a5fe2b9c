// Package store persists the unique ids of filings that were already
// published, so repeated runs over an unchanged register create nothing new.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"afmwatch/pkg/contracts/domain"
)

// Entry records when and for what a unique id was first published.
type Entry struct {
	Issuer      string    `json:"issuer"`
	Filer       string    `json:"filer"`
	DateISO     string    `json:"date_iso"`
	PercentRaw  string    `json:"percent_raw"`
	PublishedAt time.Time `json:"published_at"`
}

// SeenStore is a file-backed set of published unique ids.
type SeenStore struct {
	path    string
	entries map[string]Entry
	dirty   bool
}

// Load reads the store file. A missing file starts an empty store; a corrupt
// file is logged and also starts empty, because losing dedupe state must not
// abort a run.
func Load(path string) *SeenStore {
	s := &SeenStore{path: path, entries: make(map[string]Entry)}
	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read seen store, starting empty",
				slog.String("path", path), slog.Any("error", err))
		}
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		slog.Warn("Seen store is corrupt, starting empty",
			slog.String("path", path), slog.Any("error", err))
		s.entries = make(map[string]Entry)
	}
	return s
}

// Seen reports whether a unique id was published by an earlier run.
func (s *SeenStore) Seen(uniqueID string) bool {
	_, ok := s.entries[uniqueID]
	return ok
}

// Add marks a filing as published.
func (s *SeenStore) Add(f domain.Filing) {
	s.entries[f.UniqueID] = Entry{
		Issuer:      f.Issuer,
		Filer:       f.Filer,
		DateISO:     f.DateISO,
		PercentRaw:  f.PercentRaw,
		PublishedAt: time.Now().UTC(),
	}
	s.dirty = true
}

// Len returns the number of stored ids.
func (s *SeenStore) Len() int {
	return len(s.entries)
}

// Save writes the store back to disk if anything changed.
func (s *SeenStore) Save() error {
	if s.path == "" || !s.dirty {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode seen store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write seen store: %w", err)
	}
	s.dirty = false
	return nil
}
