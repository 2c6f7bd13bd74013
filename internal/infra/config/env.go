package config

import (
	"strconv"
	"strings"

	"github.com/runoshun/confcache/internal/domain"
)

// Environment variable names read at startup.
const (
	EnvMirrorURLs   = "REPO_MIRROR_URLS"
	EnvCI           = "CI"
	EnvIgnoreMirror = "IGNORE_MIRROR"
	EnvLogLevel     = "CONFCACHE_LOG_LEVEL"
)

// EnvironmentFrom builds the host environment from getenv. It is called
// once when the container is built.
func EnvironmentFrom(getenv func(string) string, hostname, goos string) domain.Environment {
	_, ci := lookup(getenv, EnvCI)
	return domain.Environment{
		MirrorURLs:   domain.ParseMirrorURLs(getenv(EnvMirrorURLs)),
		Hostname:     hostname,
		OS:           goos,
		CI:           ci,
		IgnoreMirror: parseBool(getenv(EnvIgnoreMirror)),
	}
}

// ApplyEnvironment overlays environment settings onto cfg.
func ApplyEnvironment(cfg *domain.Config, env domain.Environment, getenv func(string) string) {
	if env.IgnoreMirror {
		cfg.Mirrors.Ignore = true
	}
	if level := strings.TrimSpace(getenv(EnvLogLevel)); level != "" {
		cfg.Log.Level = level
	}
}

// lookup treats an empty value as unset.
func lookup(getenv func(string) string, name string) (string, bool) {
	v := getenv(name)
	return v, v != ""
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
