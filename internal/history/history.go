// Package history keeps a log of finished runs in a local Pebble store.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"recast/internal/processor"
)

const (
	keyPrefix = "run/"
	// keyLimit sorts directly after every key carrying keyPrefix.
	keyLimit = "run0"
)

// Entry is the persisted digest of one run.
type Entry struct {
	ID            string         `json:"id"`
	StartedAt     time.Time      `json:"started_at"`
	Input         string         `json:"input"`
	Inputs        int            `json:"inputs"`
	Succeeded     map[string]int `json:"succeeded"`
	Failed        int            `json:"failed"`
	Skipped       []string       `json:"skipped,omitempty"`
	ProviderError string         `json:"provider_error,omitempty"`
	Duration      time.Duration  `json:"duration"`
}

// NewEntry digests a summary. The ID is assigned here so callers can log it.
func NewEntry(input string, startedAt time.Time, s processor.Summary) Entry {
	succeeded := make(map[string]int, len(s.Succeeded))
	for id, n := range s.Succeeded {
		succeeded[id] = n
	}
	var skipped []string
	for _, sk := range s.Skipped {
		skipped = append(skipped, sk.Format)
	}
	return Entry{
		ID:            uuid.NewString(),
		StartedAt:     startedAt.UTC(),
		Input:         input,
		Inputs:        s.Inputs,
		Succeeded:     succeeded,
		Failed:        s.Failed(),
		Skipped:       skipped,
		ProviderError: s.ProviderError,
		Duration:      s.Duration,
	}
}

// Formats returns the format ids that produced output, sorted.
func (e Entry) Formats() []string {
	ids := make([]string, 0, len(e.Succeeded))
	for id := range e.Succeeded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type Store struct {
	db *pebble.DB
}

// DefaultDir is <user config dir>/recast/history.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recast", "history"), nil
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Append stores e, filling in an ID when it has none.
func (s *Store) Append(e Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return e, fmt.Errorf("history store not open")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return e, fmt.Errorf("marshal history entry: %w", err)
	}
	if err := s.db.Set(entryKey(e), data, pebble.Sync); err != nil {
		return e, fmt.Errorf("write history entry: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history store not open")
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyLimit),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.Last(); iter.Valid(); iter.Prev() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, iter.Error()
}

// Keys sort by start time; the id breaks ties between runs started in the
// same nanosecond.
func entryKey(e Entry) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", keyPrefix, e.StartedAt.UnixNano(), e.ID))
}
