// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/runoshun/confcache/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockEntryStore is an in-memory domain.EntryStore that also records
// snapshots.
// Fields are ordered to minimize memory padding.
type MockEntryStore struct {
	Entries     map[string]*domain.CacheEntry
	Snapshots   map[string]map[string]*domain.CacheEntry
	GetErr      error
	SaveErr     error
	DeleteErr   error
	ListErr     error
	Deleted     []string
	Initialized bool
}

var (
	_ domain.EntryStore       = (*MockEntryStore)(nil)
	_ domain.EntrySnapshotter = (*MockEntryStore)(nil)
	_ domain.StoreInitializer = (*MockEntryStore)(nil)
)

// NewMockEntryStore creates a new MockEntryStore holding entries.
func NewMockEntryStore(entries ...*domain.CacheEntry) *MockEntryStore {
	m := &MockEntryStore{
		Entries:   make(map[string]*domain.CacheEntry),
		Snapshots: make(map[string]map[string]*domain.CacheEntry),
	}
	for _, e := range entries {
		m.Entries[e.Key] = e
	}
	return m
}

// Initialize marks the store initialized.
func (m *MockEntryStore) Initialize() error {
	m.Initialized = true
	return nil
}

// IsInitialized reports whether Initialize was called.
func (m *MockEntryStore) IsInitialized() bool {
	return m.Initialized
}

// Get returns the entry stored under key.
func (m *MockEntryStore) Get(key string) (*domain.CacheEntry, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	e, ok := m.Entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, key)
	}
	return e, nil
}

// List returns summaries sorted by key.
func (m *MockEntryStore) List() ([]domain.EntrySummary, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.EntrySummary, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Save stores entry.
func (m *MockEntryStore) Save(entry *domain.CacheEntry) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Entries[entry.Key] = entry
	return nil
}

// Delete removes the entry and records the key.
func (m *MockEntryStore) Delete(key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Entries, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// Snapshot copies the current entries under name.
func (m *MockEntryStore) Snapshot(name string) error {
	snap := make(map[string]*domain.CacheEntry, len(m.Entries))
	for k, v := range m.Entries {
		snap[k] = v
	}
	m.Snapshots[name] = snap
	return nil
}

// RestoreSnapshot replaces the entries with snapshot name.
func (m *MockEntryStore) RestoreSnapshot(name string) error {
	snap, ok := m.Snapshots[name]
	if !ok {
		return fmt.Errorf("%w: snapshot %s", domain.ErrEntryNotFound, name)
	}
	m.Entries = make(map[string]*domain.CacheEntry, len(snap))
	for k, v := range snap {
		m.Entries[k] = v
	}
	return nil
}

// ListSnapshots returns snapshot names, sorted.
func (m *MockEntryStore) ListSnapshots() ([]string, error) {
	names := make([]string, 0, len(m.Snapshots))
	for name := range m.Snapshots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MockPlainStore is a domain.EntryStore without snapshot support.
type MockPlainStore struct {
	domain.EntryStore
}

// MockRehydrator is a test double for domain.Rehydrator and
// domain.RepositoryResolver.
// Fields are ordered to minimize memory padding.
type MockRehydrator struct {
	Summary    *domain.BuildSummary
	Err        error
	Resolve    func(url string) string
	Calls      []string
	Overridden bool
}

var (
	_ domain.Rehydrator         = (*MockRehydrator)(nil)
	_ domain.RepositoryResolver = (*MockRehydrator)(nil)
)

// Rehydrate records the entry key and returns the configured result.
func (m *MockRehydrator) Rehydrate(ctx context.Context, entry *domain.CacheEntry) (*domain.BuildSummary, error) {
	m.Calls = append(m.Calls, entry.Key)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Summary != nil {
		return m.Summary, nil
	}
	return &domain.BuildSummary{IdentityPath: ":", RootProject: entry.RootProjectName}, nil
}

// ResolveRepositories applies Resolve to each url.
func (m *MockRehydrator) ResolveRepositories(urls []string) ([]string, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	out := make([]string, len(urls))
	for i, url := range urls {
		out[i] = url
		if m.Resolve != nil {
			out[i] = m.Resolve(url)
		}
	}
	return out, m.Overridden, nil
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config, or defaults.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	return m.LoadWithOptions(domain.LoadConfigOptions{})
}

// LoadWithOptions ignores opts.
func (m *MockConfigLoader) LoadWithOptions(_ domain.LoadConfigOptions) (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Config == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr   error
	InitGlobalErr error
	Global        domain.ConfigInfo
	Repo          domain.ConfigInfo
	Override      domain.ConfigInfo
	RepoInits     int
	GlobalInits   int
}

var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetGlobalConfigInfo returns Global.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo { return m.Global }

// GetRepoConfigInfo returns Repo.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo { return m.Repo }

// GetOverrideConfigInfo returns Override.
func (m *MockConfigManager) GetOverrideConfigInfo() domain.ConfigInfo { return m.Override }

// InitRepoConfig counts the call.
func (m *MockConfigManager) InitRepoConfig() error {
	m.RepoInits++
	return m.InitRepoErr
}

// InitGlobalConfig counts the call.
func (m *MockConfigManager) InitGlobalConfig() error {
	m.GlobalInits++
	return m.InitGlobalErr
}

// LogRecord is one call recorded by MockLogger.
type LogRecord struct {
	Level    string
	Build    string
	Category string
	Msg      string
}

// MockLogger records every call.
type MockLogger struct {
	Records []LogRecord
	mu      sync.Mutex
}

var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) record(level, build, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, LogRecord{Level: level, Build: build, Category: category, Msg: msg})
}

// Debug records a debug message.
func (m *MockLogger) Debug(build, category, msg string) { m.record("debug", build, category, msg) }

// Info records an info message.
func (m *MockLogger) Info(build, category, msg string) { m.record("info", build, category, msg) }

// Warn records a warning.
func (m *MockLogger) Warn(build, category, msg string) { m.record("warn", build, category, msg) }

// Error records an error.
func (m *MockLogger) Error(build, category, msg string) { m.record("error", build, category, msg) }

// Levels returns the recorded levels in order.
func (m *MockLogger) Levels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Records))
	for i, r := range m.Records {
		out[i] = r.Level
	}
	return out
}
