// Package yamlstore implements config.Store backed by a flat YAML file.
//
// The file holds flat key-value pairs; dotted keys such as "list.state"
// are literal strings, not nested paths. yaml.Marshal on map[string]string
// produces alphabetical key ordering, so the file is deterministic and
// diff-friendly.
package yamlstore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/uname-n/git-issue/internal/config"

	"gopkg.in/yaml.v3"
)

// YAMLStore implements config.Store using a YAML file on disk, with an
// in-memory overlay for values that must not be persisted.
type YAMLStore struct {
	path     string
	file     map[string]string // contents of the file as last read
	overlays map[string]string // SetInMemory values, never written
}

// New creates a YAMLStore that reads from and writes to path.
// A missing or empty file yields an empty store; the file is created on
// the first Set call.
func New(path string) (*YAMLStore, error) {
	s := &YAMLStore{
		path:     path,
		overlays: make(map[string]string),
	}
	if err := s.readFromDisk(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the config file path.
func (s *YAMLStore) Path() string {
	return s.path
}

// Get returns the value for key and whether it was found. In-memory values
// take precedence over the file.
func (s *YAMLStore) Get(key string) (string, bool) {
	if v, ok := s.overlays[key]; ok {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}

// Set writes key=value and persists to disk. Any in-memory value for key
// is dropped so the persisted one is visible.
func (s *YAMLStore) Set(key, value string) error {
	delete(s.overlays, key)
	return s.withLock(func() {
		s.file[key] = value
	})
}

// SetInMemory writes key=value to the overlay without persisting.
func (s *YAMLStore) SetInMemory(key, value string) {
	s.overlays[key] = value
}

// Unset removes key from the file and the overlay and persists to disk.
func (s *YAMLStore) Unset(key string) error {
	delete(s.overlays, key)
	return s.withLock(func() {
		delete(s.file, key)
	})
}

// All returns a copy of all key-value pairs, overlay included.
func (s *YAMLStore) All() map[string]string {
	out := make(map[string]string, len(s.file)+len(s.overlays))
	for k, v := range s.file {
		out[k] = v
	}
	for k, v := range s.overlays {
		out[k] = v
	}
	return out
}

// Persisted returns a copy of the values stored in the file only.
func (s *YAMLStore) Persisted() map[string]string {
	out := make(map[string]string, len(s.file))
	for k, v := range s.file {
		out[k] = v
	}
	return out
}

// lockPath returns the path to the lock file used for flock-based coordination.
func (s *YAMLStore) lockPath() string {
	return s.path + ".lock"
}

// withLock acquires an exclusive file lock, re-reads the config from disk
// (picking up writes from other processes), calls fn to mutate s.file,
// then atomically writes s.file back to disk.
func (s *YAMLStore) withLock(fn func()) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("opening config lock: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquiring config lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	if err := s.readFromDisk(); err != nil {
		return err
	}

	fn()

	raw, err := yaml.Marshal(s.file)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicWrite(s.path, raw)
}

// readFromDisk reloads s.file from the config file on disk.
func (s *YAMLStore) readFromDisk() error {
	fresh := make(map[string]string)
	raw, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &fresh); err != nil {
			return fmt.Errorf("parsing config file %s: %w", s.path, err)
		}
		if fresh == nil {
			fresh = make(map[string]string)
		}
	}
	s.file = fresh
	return nil
}

// atomicWrite writes data to a file atomically via a temporary file and rename.
func atomicWrite(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Compile-time check that YAMLStore implements config.Store.
var _ config.Store = (*YAMLStore)(nil)
