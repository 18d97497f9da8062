package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONStore keeps markers in a JSON object of show id to RFC 3339 timestamp
// and rewrites the file on every update.
type JSONStore struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// OpenJSON loads path. A missing file is an empty store.
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", path, err)
	}
	if s.data == nil {
		s.data = map[string]string{}
	}
	return s, nil
}

func (s *JSONStore) LastProcessed(showID string) (time.Time, bool, error) {
	s.mu.Lock()
	raw, ok := s.data[showID]
	s.mu.Unlock()

	if !ok || raw == "" {
		return time.Time{}, false, nil
	}
	t, err := parseMarker(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse marker for %s: %w", showID, err)
	}
	return t, true, nil
}

func (s *JSONStore) UpdateLastProcessed(showID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[showID] = publishedAt.Format(time.RFC3339Nano)
	return s.save()
}

func (s *JSONStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }
