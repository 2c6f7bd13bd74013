package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runoshun/confcache/internal/domain"
)

// InitStoreInput contains the input parameters for InitStore.
type InitStoreInput struct {
	CacheDir string // Path to .confcache directory
	RepoRoot string // Path to the build root
}

// InitStoreOutput contains the output from InitStore.
type InitStoreOutput struct {
	CacheDir           string // Path to the cache directory
	AlreadyInitialized bool   // True if the store already existed
	GitignoreNeedsAdd  bool   // True if .confcache/ is not in .gitignore
}

// InitStore prepares a build root for confcache.
type InitStore struct {
	storeInit domain.StoreInitializer
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(storeInit domain.StoreInitializer) *InitStore {
	return &InitStore{storeInit: storeInit}
}

// Execute creates the cache directory layout and initializes the entry
// store. Running it again is harmless.
func (uc *InitStore) Execute(_ context.Context, in InitStoreInput) (*InitStoreOutput, error) {
	alreadyInitialized := uc.storeInit.IsInitialized()

	if !alreadyInitialized {
		if err := os.MkdirAll(filepath.Join(in.CacheDir, "logs"), 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	if err := uc.storeInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize entry store: %w", err)
	}

	gitignoreNeedsAdd := false
	if !alreadyInitialized && in.RepoRoot != "" {
		gitignoreNeedsAdd = !isCacheDirInGitignore(in.RepoRoot)
	}

	return &InitStoreOutput{
		CacheDir:           in.CacheDir,
		AlreadyInitialized: alreadyInitialized,
		GitignoreNeedsAdd:  gitignoreNeedsAdd,
	}, nil
}

// isCacheDirInGitignore checks if .confcache/ is in .gitignore.
func isCacheDirInGitignore(repoRoot string) bool {
	content, err := os.ReadFile(filepath.Join(repoRoot, ".gitignore"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == domain.CacheDirName || line == domain.CacheDirName+"/" {
			return true
		}
	}
	return false
}
