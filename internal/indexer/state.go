package indexer

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	vserrors "github.com/ziadkadry99/vaultsearch/internal/errors"
)

// StateFileName is the sync-state file inside the data directory.
const StateFileName = "sync_state.json"

// StateStore maps document ids to the fingerprint they were last indexed
// with. It is loaded once and rewritten whole by Persist.
type StateStore struct {
	path string

	mu      sync.RWMutex
	entries map[string]string

	// persistMu serializes whole-file rewrites across documents.
	persistMu sync.Mutex
}

// LoadStateStore reads the state file at path. A missing file yields an empty
// store; an unreadable or corrupt file is fatal.
func LoadStateStore(path string) (*StateStore, error) {
	s := &StateStore{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, vserrors.Fatal("indexer.LoadStateStore", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, vserrors.Fatal("indexer.LoadStateStore", path, fmt.Errorf("decode: %w", err))
	}
	if s.entries == nil {
		s.entries = make(map[string]string)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *StateStore) Path() string { return s.path }

// Get returns the stored fingerprint for id.
func (s *StateStore) Get(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.entries[id]
	return fp, ok
}

// Set records fp as the fingerprint of id. Call Persist to make it durable.
func (s *StateStore) Set(id, fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = fp
}

// Delete removes id and reports whether it was present.
func (s *StateStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// Len returns the number of tracked documents.
func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of all entries.
func (s *StateStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

// Reset drops every entry in memory.
func (s *StateStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]string)
}

// Persist rewrites the state file. The new content goes to a temporary file
// in the same directory which is synced and renamed over the old one, so a
// crash leaves either the previous or the new state on disk.
func (s *StateStore) Persist() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return vserrors.Transient("indexer.Persist", s.path, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return vserrors.Transient("indexer.Persist", s.path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
