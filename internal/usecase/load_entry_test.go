package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedEntry(key string) *domain.CacheEntry {
	return &domain.CacheEntry{
		Key:             key,
		RootProjectName: "app",
		Definition:      domain.BuildDefinition{Name: "app", RootDir: "/src"},
		Projects:        []domain.ProjectEntry{{Path: ":", Dir: "/src"}, {Path: ":lib", Dir: "/src/lib"}},
	}
}

func TestLoadEntry_Execute_Success(t *testing.T) {
	store := testutil.NewMockEntryStore(storedEntry("app"))
	rehydrator := &testutil.MockRehydrator{Summary: &domain.BuildSummary{
		IdentityPath:  ":",
		Projects:      []domain.ProjectSummary{{Path: ":"}, {Path: ":lib"}},
		ScheduledWork: []string{":lib:jar"},
	}}
	logger := &testutil.MockLogger{}
	uc := NewLoadEntry(store, rehydrator, &testutil.MockConfigLoader{}, logger)

	out, err := uc.Execute(context.Background(), LoadEntryInput{Key: "app"})

	require.NoError(t, err)
	assert.False(t, out.Rejected)
	assert.False(t, out.Discarded)
	assert.Equal(t, 2, out.Summary.CountProjects())
	assert.Equal(t, []string{"app"}, rehydrator.Calls)
	assert.Equal(t, []string{"info"}, logger.Levels())
}

func TestLoadEntry_Execute_RehydrationFailureDiscards(t *testing.T) {
	store := testutil.NewMockEntryStore(storedEntry("app"))
	cause := fmt.Errorf("create project :a:b: %w", domain.ErrParentNotFound)
	logger := &testutil.MockLogger{}
	uc := NewLoadEntry(store, &testutil.MockRehydrator{Err: cause}, &testutil.MockConfigLoader{}, logger)

	out, err := uc.Execute(context.Background(), LoadEntryInput{Key: "app"})

	require.NoError(t, err, "a rehydration failure is reported, not returned")
	assert.True(t, out.Rejected)
	assert.True(t, out.Discarded)
	assert.Nil(t, out.Summary)
	assert.ErrorIs(t, out.Reason, domain.ErrParentNotFound)
	assert.Equal(t, []string{"app"}, store.Deleted)
	assert.Equal(t, []string{"warn"}, logger.Levels())
}

func TestLoadEntry_Execute_KeepInvalid(t *testing.T) {
	store := testutil.NewMockEntryStore(storedEntry("app"))
	cfg := domain.NewDefaultConfig()
	cfg.Cache.KeepInvalid = true
	rehydrator := &testutil.MockRehydrator{Err: domain.ErrCycleDetected}
	uc := NewLoadEntry(store, rehydrator, &testutil.MockConfigLoader{Config: cfg}, domain.NopLogger{})

	out, err := uc.Execute(context.Background(), LoadEntryInput{Key: "app"})

	require.NoError(t, err)
	assert.True(t, out.Rejected)
	assert.False(t, out.Discarded)
	assert.Empty(t, store.Deleted)
	assert.Contains(t, store.Entries, "app")
}

func TestLoadEntry_Execute_CancelledKeepsEntry(t *testing.T) {
	store := testutil.NewMockEntryStore(storedEntry("app"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uc := NewLoadEntry(store, &testutil.MockRehydrator{}, &testutil.MockConfigLoader{}, domain.NopLogger{})

	_, err := uc.Execute(ctx, LoadEntryInput{Key: "app"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Deleted)
}

func TestLoadEntry_Execute_NotFound(t *testing.T) {
	uc := NewLoadEntry(testutil.NewMockEntryStore(), &testutil.MockRehydrator{}, &testutil.MockConfigLoader{}, domain.NopLogger{})

	_, err := uc.Execute(context.Background(), LoadEntryInput{Key: "missing"})

	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestLoadEntry_Execute_DiscardError(t *testing.T) {
	store := testutil.NewMockEntryStore(storedEntry("app"))
	store.DeleteErr = errors.New("read-only")
	uc := NewLoadEntry(store, &testutil.MockRehydrator{Err: domain.ErrCorruptEntry}, &testutil.MockConfigLoader{}, domain.NopLogger{})

	_, err := uc.Execute(context.Background(), LoadEntryInput{Key: "app"})

	assert.ErrorContains(t, err, "read-only")
}

func TestLoadEntry_Execute_ConfigError(t *testing.T) {
	loader := &testutil.MockConfigLoader{Err: errors.New("bad toml")}
	uc := NewLoadEntry(testutil.NewMockEntryStore(), &testutil.MockRehydrator{}, loader, domain.NopLogger{})

	_, err := uc.Execute(context.Background(), LoadEntryInput{Key: "app"})

	assert.ErrorContains(t, err, "bad toml")
}
