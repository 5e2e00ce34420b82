package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	storeDir   = "manifests"
	filePrefix = "manifest_"
	fileSuffix = ".json"
)

// Store reads and writes manifests under <destination root>/manifests.
type Store struct {
	dir string
}

func NewStore(destRoot string) *Store {
	return &Store{dir: filepath.Join(destRoot, storeDir)}
}

func (s *Store) path(timestamp string) string {
	return filepath.Join(s.dir, filePrefix+timestamp+fileSuffix)
}

// Save persists a manifest. It writes to a temp file first and renames
// into place, so a crash never leaves a truncated manifest that the next
// incremental would trust.
func (s *Store) Save(m *Manifest) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Errorf("creating manifest dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Errorf("encoding manifest: %w", err)
	}

	final := s.path(m.Timestamp)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return errors.Errorf("finalizing manifest: %w", err)
	}
	return nil
}

// Load reads the manifest for one run timestamp.
func (s *Store) Load(timestamp string) (*Manifest, error) {
	data, err := os.ReadFile(s.path(timestamp))
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Errorf("decoding manifest: %w", err)
	}
	if m.Files == nil {
		m.Files = make(map[string]Entry)
	}
	return &m, nil
}

// Remove deletes the manifest for one run timestamp. Missing files are
// not an error.
func (s *Store) Remove(timestamp string) error {
	err := os.Remove(s.path(timestamp))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Timestamps lists all persisted run timestamps, oldest first.
func (s *Store) Timestamps() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("reading manifest dir: %w", err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Strings(out)
	return out, nil
}

// Latest returns the most recent manifest for target, or nil when none
// exists. A corrupt newest manifest also yields nil with the error, so
// the caller can degrade the run to full-mode semantics.
func (s *Store) Latest(target string) (*Manifest, error) {
	timestamps, err := s.Timestamps()
	if err != nil {
		return nil, err
	}

	for i := len(timestamps) - 1; i >= 0; i-- {
		m, err := s.Load(timestamps[i])
		if err != nil {
			return nil, err
		}
		if m.Target == target {
			return m, nil
		}
	}
	return nil, nil
}
