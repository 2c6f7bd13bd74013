// Package git locates the repository that holds a build root.
package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"

	"github.com/runoshun/confcache/internal/domain"
)

// Client describes the repository around a directory.
type Client struct {
	repoRoot string // Worktree root
	gitDir   string // .git directory
}

// NewClient detects the repository containing dir, walking up parents.
func NewClient(dir string) (*Client, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to host a build.
		return nil, domain.ErrNotGitRepository
	}
	root := wt.Filesystem.Root()

	return &Client{
		repoRoot: root,
		gitDir:   filepath.Join(root, ".git"),
	}, nil
}

// RepoRoot returns the repository root directory.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// GitDir returns the .git path of the worktree.
func (c *Client) GitDir() string {
	return c.gitDir
}
