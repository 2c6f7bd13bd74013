package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/confcache/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	loader *Loader
}

// NewManager creates a new Manager.
func NewManager(repoRoot, cacheDir string) *Manager {
	return &Manager{loader: NewLoader(repoRoot, cacheDir)}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(repoRoot, cacheDir, globalConfDir string) *Manager {
	return &Manager{loader: NewLoaderWithGlobalDir(repoRoot, cacheDir, globalConfDir)}
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	path := m.loader.GlobalPath()
	if path == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(path)
}

// GetRepoConfigInfo returns information about the repository config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	return getConfigInfo(m.loader.RepoPath())
}

// GetOverrideConfigInfo returns information about the local override file.
func (m *Manager) GetOverrideConfigInfo() domain.ConfigInfo {
	return getConfigInfo(m.loader.OverridePath())
}

// InitRepoConfig creates a repository config file with default template.
func (m *Manager) InitRepoConfig() error {
	return initConfig(m.loader.RepoPath())
}

// InitGlobalConfig creates a global config file with default template.
func (m *Manager) InitGlobalConfig() error {
	path := m.loader.GlobalPath()
	if path == "" {
		return errors.New("global config directory not available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return initConfig(path)
}

// getConfigInfo reads a config file and returns its info.
func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// initConfig creates a config file with default template.
func initConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	return os.WriteFile(path, []byte(domain.RenderConfigTemplate()), 0o600)
}
