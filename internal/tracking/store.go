// Package tracking persists the set of remote alert IDs created by this
// tool, keyed by project, so deletions only ever touch automation-created
// alerts and never the project's default ones.
package tracking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// DefaultFileName is the tracking file written next to the tool by default.
const DefaultFileName = ".automation_alert_ids.json"

// Store maps a project ID to the remote alert IDs this tool created there.
// The whole file is read at load and rewritten atomically on Save, so a
// crash mid-write cannot corrupt previously tracked IDs.
type Store struct {
	path string

	mu   sync.Mutex
	data map[string][]string
}

// Load reads the tracking file at path. A missing file yields an empty
// store; an unreadable or malformed file is an error, since silently
// resetting it would orphan previously created alerts.
func Load(path string) (*Store, error) {
	s := &Store{path: path, data: make(map[string][]string)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking file %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("tracking file %s is corrupt: %w", path, err)
	}
	return s, nil
}

// IDs returns the tracked alert IDs for a project, sorted, as a copy.
func (s *Store) IDs(projectID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.data[projectID]))
	copy(ids, s.data[projectID])
	sort.Strings(ids)
	return ids
}

// Add merges alert IDs into a project's tracked set, ignoring duplicates.
func (s *Store) Add(projectID string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := make(map[string]struct{}, len(s.data[projectID]))
	for _, id := range s.data[projectID] {
		existing[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			existing[id] = struct{}{}
			s.data[projectID] = append(s.data[projectID], id)
		}
	}
}

// Remove drops alert IDs from a project's tracked set. Removing the last
// ID leaves an empty entry rather than deleting the key, so a later Save
// records that the project has no tracked alerts.
func (s *Store) Remove(projectID string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]string, 0, len(s.data[projectID]))
	for _, id := range s.data[projectID] {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	s.data[projectID] = kept
}

// Clear empties a project's tracked set. The entry is kept as an empty
// list, the same shape Remove leaves, so the file serializes as [] and
// never as null.
func (s *Store) Clear(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[projectID] = []string{}
}

// Save writes the store back to disk via a temp file and rename in the
// same directory, so readers never observe a partially written file.
func (s *Store) Save() error {
	s.mu.Lock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode tracking data: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp tracking file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()          //nolint:errcheck // best effort on failure path
		os.Remove(tmpName)   //nolint:errcheck
		return fmt.Errorf("failed to write temp tracking file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("failed to close temp tracking file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("failed to replace tracking file %s: %w", s.path, err)
	}
	return nil
}
