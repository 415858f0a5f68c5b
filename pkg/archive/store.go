// Package archive persists finished travel plans to disk so earlier
// runs can be listed and re-read from the CLI.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zen-systems/tripflow/pkg/schema"
)

// Entry identifies one stored plan.
type Entry struct {
	RequestID string
	SavedAt   time.Time
	Path      string
}

// Store manages the on-disk plan history.
type Store struct {
	BasePath string
}

// NewStore creates a plan store rooted at basePath, defaulting to
// ~/.tripflow/history.
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Join(home, ".tripflow", "history")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}
	return &Store{BasePath: basePath}, nil
}

// Save writes a plan as indented JSON. Files are named
// timestamp__requestID.json so a directory listing sorts by time.
func (s *Store) Save(resp *schema.FinalResponse) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s__%s.json", time.Now().UTC().Format("20060102150405"), resp.RequestID)
	path := filepath.Join(s.BasePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// List returns stored plans, newest first.
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.BasePath)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		stamp, id, ok := strings.Cut(strings.TrimSuffix(f.Name(), ".json"), "__")
		if !ok {
			continue
		}
		savedAt, err := time.Parse("20060102150405", stamp)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			RequestID: id,
			SavedAt:   savedAt,
			Path:      filepath.Join(s.BasePath, f.Name()),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})
	return entries, nil
}

// Read loads a stored plan by request ID.
func (s *Store) Read(requestID string) (*schema.FinalResponse, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.RequestID == requestID {
			data, err := os.ReadFile(e.Path)
			if err != nil {
				return nil, err
			}
			var resp schema.FinalResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return nil, fmt.Errorf("parse stored plan %s: %w", e.Path, err)
			}
			return &resp, nil
		}
	}
	return nil, fmt.Errorf("no stored plan with request id %q", requestID)
}
