package domain

import (
	"path/filepath"
	"strings"
)

// Configuration file names.
const (
	ConfigFileName         = "config.toml"
	OverrideConfigFileName = "config.override.toml"
	RepoConfigFileName     = ".confcache.toml"
	CacheDirName           = ".confcache"
	EntriesFileName        = "entries.json"
)

// Store backends.
const (
	StoreJSON = "json"
	StoreGit  = "git"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Mirrors  MirrorsConfig `toml:"mirrors"`
	Warnings []string      `toml:"-"`
	Cache    CacheConfig   `toml:"cache"`
	Portal   PortalConfig  `toml:"portal"`
	Log      LogConfig     `toml:"log"`
}

// CacheConfig holds entry storage settings from the [cache] section.
type CacheConfig struct {
	Store       string `toml:"store,omitempty"`        // "json" (default) or "git"
	Namespace   string `toml:"namespace,omitempty"`    // Git ref namespace (default: "confcache")
	Key         string `toml:"key,omitempty"`          // Hex AES-256 key, required when encrypt is set
	Encrypt     bool   `toml:"encrypt,omitempty"`      // Encrypt entries at rest (git store only)
	KeepInvalid bool   `toml:"keep_invalid,omitempty"` // Keep entries that failed to rehydrate
}

// MirrorsConfig holds repository mirror settings from the [mirrors] section.
type MirrorsConfig struct {
	URLs   map[string]string `toml:"urls,omitempty"`   // Known repository name -> mirror URL
	Ignore bool              `toml:"ignore,omitempty"` // Disable the plugin portal override
}

// PortalConfig holds plugin portal settings from the [portal] section.
type PortalConfig struct {
	OverrideURL string `toml:"override_url,omitempty"`
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // debug, info, warn, error
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Mirrors: MirrorsConfig{URLs: map[string]string{}},
		Cache: CacheConfig{
			Store:     StoreJSON,
			Namespace: "confcache",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate reports configuration problems as warnings on c.
func (c *Config) Validate() {
	switch c.Cache.Store {
	case StoreJSON, StoreGit:
	default:
		c.Warnings = append(c.Warnings, "unknown cache store "+c.Cache.Store+", using json")
		c.Cache.Store = StoreJSON
	}
	if c.Cache.Encrypt && c.Cache.Key == "" {
		c.Warnings = append(c.Warnings, "cache.encrypt is set without cache.key, encryption disabled")
		c.Cache.Encrypt = false
	}
	for name := range c.Mirrors.URLs {
		if _, ok := KnownRepositories[name]; !ok {
			c.Warnings = append(c.Warnings, "mirror for unknown repository: "+name)
		}
	}
}

// GlobalConfigDir returns the global config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, "confcache")
}

// RepoCacheDir returns the cache directory of a build root.
func RepoCacheDir(root string) string {
	return filepath.Join(root, CacheDirName)
}

// GlobalLogPath returns the global log file path.
func GlobalLogPath(cacheDir string) string {
	return filepath.Join(cacheDir, "logs", "confcache.log")
}

// BuildLogPath returns the per-build log file path.
func BuildLogPath(cacheDir, build string) string {
	return filepath.Join(cacheDir, "logs", "build-"+LogFileSafeName(build)+".log")
}

// LogFileSafeName maps a build identity to a file-name-safe token.
func LogFileSafeName(build string) string {
	trimmed := strings.Trim(build, PathSeparator)
	if trimmed == "" {
		return "root"
	}
	return strings.ReplaceAll(trimmed, PathSeparator, "-")
}

// RenderConfigTemplate returns the commented default configuration file.
func RenderConfigTemplate() string {
	return `# confcache configuration

[cache]
# Entry store backend: "json" or "git".
store = "json"
# Git ref namespace used by the git store.
namespace = "confcache"
# Encrypt entries at rest (git store only). Requires key.
# encrypt = true
# key = "<64 hex characters>"
# Keep entries that failed to rehydrate instead of deleting them.
# keep_invalid = false

[mirrors]
# Disable the plugin portal override.
# ignore = false

[mirrors.urls]
# mavencentral = "https://mirror.example.com/maven2/"

[portal]
# override_url = "https://portal-mirror.example.com/m2/"

[log]
# debug, info, warn, error
level = "info"
`
}
