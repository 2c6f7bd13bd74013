package gitstore

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/crypto"
)

func setupTestRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.gradle.kts"), []byte(""), 0o644))
	_, err = wt.Add("settings.gradle.kts")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return repo, dir
}

func testEntry(key string) *domain.CacheEntry {
	return &domain.CacheEntry{
		Created:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Key:             key,
		RootProjectName: "app",
		Definition:      domain.BuildDefinition{Name: "app", RootDir: "/src"},
		Projects: []domain.ProjectEntry{
			{Path: ":", Dir: "/src", BuildDir: "/src/build"},
			{Path: ":lib", Dir: "/src/lib", BuildDir: "/out/lib"},
		},
		Work: []domain.WorkEntry{{Project: ":lib", Task: "jar"}},
	}
}

func TestStore_Initialize(t *testing.T) {
	repo, _ := setupTestRepo(t)
	store := NewWithRepo(repo, "confcache-test")

	assert.False(t, store.IsInitialized())
	require.NoError(t, store.Initialize())
	require.NoError(t, store.Initialize())
	assert.True(t, store.IsInitialized())
}

func TestStore_SaveGet(t *testing.T) {
	repo, _ := setupTestRepo(t)
	store := NewWithRepo(repo, "confcache-test")

	require.NoError(t, store.Save(testEntry("abc")))

	got, err := store.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Key)
	assert.Equal(t, "app", got.RootProjectName)
	assert.Equal(t, testEntry("abc").Projects, got.Projects)
	assert.True(t, testEntry("abc").Created.Equal(got.Created))

	ref, err := repo.Reference(plumbing.ReferenceName("refs/confcache-test/entries/abc"), true)
	require.NoError(t, err)
	assert.False(t, ref.Hash().IsZero())
}

func TestStore_GetMissing(t *testing.T) {
	repo, _ := setupTestRepo(t)
	store := NewWithRepo(repo, "confcache-test")

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	_, err = store.Get("../escape")
	assert.ErrorIs(t, err, domain.ErrInvalidEntryKey)
}

func TestStore_ListSorted(t *testing.T) {
	repo, _ := setupTestRepo(t)
	store := NewWithRepo(repo, "confcache-test")
	require.NoError(t, store.Save(testEntry("b")))
	require.NoError(t, store.Save(testEntry("a")))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Key)
	assert.Equal(t, 2, list[0].Projects)
	assert.Equal(t, 1, list[0].WorkNodes)
}

func TestStore_Delete(t *testing.T) {
	repo, _ := setupTestRepo(t)
	store := NewWithRepo(repo, "confcache-test")
	require.NoError(t, store.Save(testEntry("abc")))

	require.NoError(t, store.Delete("abc"))
	require.NoError(t, store.Delete("abc"))

	_, err := store.Get("abc")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestStore_Encrypted(t *testing.T) {
	repo, _ := setupTestRepo(t)
	key := hex.EncodeToString(make([]byte, crypto.KeySize))
	enc, err := crypto.NewEncryptor(key, "")
	require.NoError(t, err)
	store := NewWithRepoAndEncryptor(repo, "confcache-test", enc)

	require.NoError(t, store.Save(testEntry("secret")))

	got, err := store.Get("secret")
	require.NoError(t, err)
	assert.Equal(t, "app", got.RootProjectName)

	plain := NewWithRepo(repo, "confcache-test")
	_, err = plain.Get("secret")
	assert.Error(t, err, "an encrypted blob is not readable without the key")
}

func TestStore_Snapshots(t *testing.T) {
	repo, _ := setupTestRepo(t)
	store := NewWithRepo(repo, "confcache-test")
	require.NoError(t, store.Save(testEntry("a")))
	require.NoError(t, store.Save(testEntry("b")))

	require.NoError(t, store.Snapshot("before"))
	require.NoError(t, store.Delete("a"))
	require.NoError(t, store.Save(testEntry("c")))

	names, err := store.ListSnapshots()
	require.NoError(t, err)
	assert.Equal(t, []string{"before"}, names)

	require.NoError(t, store.RestoreSnapshot("before"))
	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Key)
	assert.Equal(t, "b", list[1].Key)

	assert.ErrorIs(t, store.RestoreSnapshot("missing"), domain.ErrEntryNotFound)
}

func TestNew_NotRepository(t *testing.T) {
	_, err := New(t.TempDir(), "confcache-test")
	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
}

func TestNew_DetectsParentRepository(t *testing.T) {
	_, dir := setupTestRepo(t)
	sub := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	store, err := New(sub, "confcache-test")
	require.NoError(t, err)
	require.NoError(t, store.Save(testEntry("abc")))
}
