package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
)

// setupGitRepo creates a temporary git repository with one commit.
func setupGitRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.gradle.kts"), []byte("rootProject.name = \"app\"\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("settings.gradle.kts")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func TestNewClient_Success(t *testing.T) {
	dir := setupGitRepo(t)

	client, err := NewClient(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, client.RepoRoot())
	assert.Equal(t, filepath.Join(dir, ".git"), client.GitDir())
}

func TestNewClient_FromSubdirectory(t *testing.T) {
	dir := setupGitRepo(t)
	sub := filepath.Join(dir, "lib", "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	client, err := NewClient(sub)

	require.NoError(t, err)
	assert.Equal(t, dir, client.RepoRoot())
}

func TestNewClient_NotGitRepo(t *testing.T) {
	_, err := NewClient(t.TempDir())

	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
}
