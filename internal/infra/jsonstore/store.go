// Package jsonstore stores cache entries in a single JSON file guarded by flock.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/runoshun/confcache/internal/domain"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Entries map[string]*domain.CacheEntry `json:"entries"`
	Meta    meta                          `json:"meta"`
}

type meta struct {
	Version int `json:"version"`
}

const storeVersion = 1

// Store implements domain.EntryStore using a JSON file.
type Store struct {
	path     string
	lockPath string
}

var _ domain.EntryStore = (*Store)(nil)

// New creates a Store for the given file path. The file is created by Initialize.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Initialize creates the store file if it doesn't exist.
func (s *Store) Initialize() error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	return s.write(&storeData{
		Entries: make(map[string]*domain.CacheEntry),
		Meta:    meta{Version: storeVersion},
	})
}

// IsInitialized reports whether the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Get retrieves an entry by key.
func (s *Store) Get(key string) (*domain.CacheEntry, error) {
	if err := domain.ValidateEntryKey(key); err != nil {
		return nil, err
	}
	var entry *domain.CacheEntry
	err := s.withLock(func(data *storeData) error {
		e, ok := data.Entries[key]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrEntryNotFound, key)
		}
		e.Key = key
		entry = e
		return nil
	})
	return entry, err
}

// List returns summaries of every entry, sorted by key.
func (s *Store) List() ([]domain.EntrySummary, error) {
	var summaries []domain.EntrySummary
	err := s.withLock(func(data *storeData) error {
		for key, e := range data.Entries {
			e.Key = key
			summaries = append(summaries, e.Summarize())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(summaries, func(a, b domain.EntrySummary) int {
		return strings.Compare(a.Key, b.Key)
	})
	return summaries, nil
}

// Save creates or replaces the entry under entry.Key.
func (s *Store) Save(entry *domain.CacheEntry) error {
	if err := domain.ValidateEntryKey(entry.Key); err != nil {
		return err
	}
	return s.withLockWrite(func(data *storeData) error {
		data.Entries[entry.Key] = entry
		return nil
	})
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (s *Store) Delete(key string) error {
	if err := domain.ValidateEntryKey(key); err != nil {
		return err
	}
	return s.withLockWrite(func(data *storeData) error {
		delete(data.Entries, key)
		return nil
	})
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}
	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("%w: parse store file: %w", domain.ErrCorruptEntry, err)
	}
	if data.Entries == nil {
		data.Entries = make(map[string]*domain.CacheEntry)
	}
	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to a temp file first, then rename for atomicity.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
