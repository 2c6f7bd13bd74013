// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/confcache/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	repoRoot      string // Build root holding .confcache.toml
	cacheDir      string // Path to <root>/.confcache
	globalConfDir string // Path to global config directory (e.g., ~/.config/confcache)
}

// NewLoader creates a new Loader.
func NewLoader(repoRoot, cacheDir string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		cacheDir:      cacheDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(repoRoot, cacheDir, globalConfDir string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		cacheDir:      cacheDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// GlobalPath returns the global config file path, or "" when unknown.
func (l *Loader) GlobalPath() string {
	if l.globalConfDir == "" {
		return ""
	}
	return filepath.Join(l.globalConfDir, domain.ConfigFileName)
}

// RepoPath returns the repository config file path.
func (l *Loader) RepoPath() string {
	return filepath.Join(l.repoRoot, domain.RepoConfigFileName)
}

// OverridePath returns the local override file path.
func (l *Loader) OverridePath() string {
	return filepath.Join(l.cacheDir, domain.OverrideConfigFileName)
}

// Load returns the merged configuration.
// Later sources take precedence: default <- global <- repo <- override.
func (l *Loader) Load() (*domain.Config, error) {
	return l.LoadWithOptions(domain.LoadConfigOptions{})
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	path := l.GlobalPath()
	if path == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(path)
}

// LoadRepo returns only the repository configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	return l.loadFile(l.RepoPath())
}

// LoadOverride returns only the local override configuration.
func (l *Loader) LoadOverride() (*domain.Config, error) {
	return l.loadFile(l.OverridePath())
}

// LoadWithOptions returns the merged configuration with options to ignore sources.
func (l *Loader) LoadWithOptions(opts domain.LoadConfigOptions) (*domain.Config, error) {
	sources := []struct {
		load   func() (*domain.Config, error)
		ignore bool
	}{
		{l.LoadGlobal, opts.IgnoreGlobal},
		{l.LoadRepo, opts.IgnoreRepo},
		{l.LoadOverride, opts.IgnoreOverride},
	}

	base := domain.NewDefaultConfig()
	for _, src := range sources {
		if src.ignore {
			continue
		}
		cfg, err := src.load()
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		base = mergeConfigs(base, cfg)
	}

	base.Validate()
	return base, nil
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{
		Mirrors: domain.MirrorsConfig{URLs: make(map[string]string)},
	}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		switch section {
		case "cache":
			for k, v := range m {
				switch k {
				case "store":
					if s, ok := v.(string); ok {
						res.Cache.Store = s
					}
				case "namespace":
					if s, ok := v.(string); ok {
						res.Cache.Namespace = s
					}
				case "key":
					if s, ok := v.(string); ok {
						res.Cache.Key = s
					}
				case "encrypt":
					if b, ok := v.(bool); ok {
						res.Cache.Encrypt = b
					}
				case "keep_invalid":
					if b, ok := v.(bool); ok {
						res.Cache.KeepInvalid = b
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [cache]: %s", k))
				}
			}
		case "mirrors":
			for k, v := range m {
				switch k {
				case "urls":
					urls, ok := v.(map[string]any)
					if !ok {
						warnings = append(warnings, "mirrors.urls must be a table")
						continue
					}
					for name, u := range urls {
						if s, ok := u.(string); ok {
							res.Mirrors.URLs[name] = s
						} else {
							warnings = append(warnings, fmt.Sprintf("mirror url for %s must be a string", name))
						}
					}
				case "ignore":
					if b, ok := v.(bool); ok {
						res.Mirrors.Ignore = b
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [mirrors]: %s", k))
				}
			}
		case "portal":
			for k, v := range m {
				switch k {
				case "override_url":
					if s, ok := v.(string); ok {
						res.Portal.OverrideURL = s
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [portal]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		Cache:    base.Cache,
		Mirrors:  domain.MirrorsConfig{Ignore: base.Mirrors.Ignore, URLs: make(map[string]string)},
		Portal:   base.Portal,
		Log:      base.Log,
		Warnings: append([]string{}, base.Warnings...),
	}
	result.Warnings = append(result.Warnings, override.Warnings...)

	for name, url := range base.Mirrors.URLs {
		result.Mirrors.URLs[name] = url
	}
	for name, url := range override.Mirrors.URLs {
		result.Mirrors.URLs[name] = url
	}

	if override.Cache.Store != "" {
		result.Cache.Store = override.Cache.Store
	}
	if override.Cache.Namespace != "" {
		result.Cache.Namespace = override.Cache.Namespace
	}
	if override.Cache.Key != "" {
		result.Cache.Key = override.Cache.Key
	}
	if override.Cache.Encrypt {
		result.Cache.Encrypt = true
	}
	if override.Cache.KeepInvalid {
		result.Cache.KeepInvalid = true
	}
	if override.Mirrors.Ignore {
		result.Mirrors.Ignore = true
	}
	if override.Portal.OverrideURL != "" {
		result.Portal.OverrideURL = override.Portal.OverrideURL
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}

	return result
}
