package domain

import (
	"sort"
	"strings"
	"sync"
)

// PluginPortalName is the known-repository name of the plugin portal.
const PluginPortalName = "gradleplugins"

// KnownRepositories maps well-known repository names to their canonical URLs.
var KnownRepositories = map[string]string{
	"jcenter":                     "https://jcenter.bintray.com/",
	"mavencentral":                "https://repo.maven.apache.org/maven2/",
	"google":                      "https://dl.google.com/dl/android/maven2/",
	"gradle":                      "https://repo.gradle.org/gradle/repo",
	"gradleplugins":               "https://plugins.gradle.org/m2",
	"gradlejavascript":            "https://repo.gradle.org/gradle/javascript-public",
	"gradle-libs":                 "https://repo.gradle.org/gradle/libs",
	"gradle-releases":             "https://repo.gradle.org/gradle/libs-releases",
	"gradle-snapshots":            "https://repo.gradle.org/gradle/libs-snapshots",
	"gradle-enterprise-plugin-rc": "https://repo.gradle.org/gradle/enterprise-libs-release-candidates-local",
	"kotlinx":                     "https://kotlin.bintray.com/kotlinx/",
	"kotlineap":                   "https://dl.bintray.com/kotlin/kotlin-eap/",
	"kotlindev":                   "https://dl.bintray.com/kotlin/kotlin-dev/",
}

// KnownRepositoryNames returns the table keys sorted.
func KnownRepositoryNames() []string {
	names := make([]string, 0, len(KnownRepositories))
	for name := range KnownRepositories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeURL makes URLs comparable regardless of scheme security and
// trailing slash.
func NormalizeURL(url string) string {
	result := strings.ReplaceAll(url, "https://", "http://")
	if strings.HasSuffix(result, "/") {
		return result
	}
	return result + "/"
}

// ParseMirrorURLs parses "name:url,name:url". Pairs split on the first colon;
// entries without one are skipped. A blank value yields an empty map.
func ParseMirrorURLs(value string) map[string]string {
	mirrors := make(map[string]string)
	if strings.TrimSpace(value) == "" {
		return mirrors
	}
	for _, pair := range strings.Split(value, ",") {
		name, url, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		mirrors[name] = url
	}
	return mirrors
}

// Environment is the host-process context mirroring decisions depend on.
// It is read once at startup and passed explicitly.
type Environment struct {
	MirrorURLs   map[string]string
	Hostname     string
	OS           string
	CI           bool
	IgnoreMirror bool
}

// IsEC2Agent reports whether the host looks like an EC2 build agent.
func (e Environment) IsEC2Agent() bool {
	return strings.HasPrefix(e.Hostname, "ip-")
}

// IsMacAgent reports whether the host runs macOS.
func (e Environment) IsMacAgent() bool {
	return strings.Contains(strings.ToLower(e.OS), "darwin") || strings.Contains(strings.ToLower(e.OS), "mac")
}

// MirrorsActive reports whether declared repositories should be mirrored.
// IgnoreMirror does not affect mirrors, it only disables the portal override.
func (e Environment) MirrorsActive() bool {
	return e.CI && !e.IsEC2Agent()
}

// PortalOverrideAllowed reports whether the plugin portal override may be
// installed for a build tree on this host.
func (e Environment) PortalOverrideAllowed() bool {
	return !e.IsEC2Agent() && !e.IsMacAgent() && !e.IgnoreMirror
}

// MirrorPolicy substitutes well-known repository URLs with mirror URLs.
type MirrorPolicy struct {
	Mirrors map[string]string
	Enabled bool
}

// NewMirrorPolicy derives the policy from the environment and configured mirrors.
// Environment mirrors take precedence over configured ones.
func NewMirrorPolicy(env Environment, configured map[string]string) MirrorPolicy {
	mirrors := make(map[string]string, len(configured)+len(env.MirrorURLs))
	for k, v := range configured {
		mirrors[k] = v
	}
	for k, v := range env.MirrorURLs {
		mirrors[k] = v
	}
	return MirrorPolicy{Mirrors: mirrors, Enabled: env.MirrorsActive()}
}

// Rewrite returns the mirror URL for url when the policy is enabled and url
// matches a known repository that has a mirror.
func (p MirrorPolicy) Rewrite(url string) (string, bool) {
	if !p.Enabled {
		return url, false
	}
	normalized := NormalizeURL(url)
	for _, name := range KnownRepositoryNames() {
		if NormalizeURL(KnownRepositories[name]) != normalized {
			continue
		}
		if mirror, ok := p.Mirrors[name]; ok {
			return mirror, true
		}
	}
	return url, false
}

// PortalOverride holds the plugin portal URL substitution for the lifetime of
// one build tree. Acquire and Release bracket that lifetime.
type PortalOverride struct {
	url  string
	held bool
	mu   sync.Mutex
}

// Acquire installs url. It fails when another tree holds the override.
func (o *PortalOverride) Acquire(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.held {
		return ErrPortalOverrideHeld
	}
	o.url = url
	o.held = true
	return nil
}

// Release removes the override. Releasing an unheld override is a no-op.
func (o *PortalOverride) Release() {
	o.mu.Lock()
	o.url = ""
	o.held = false
	o.mu.Unlock()
}

// URL returns the override and whether it is held.
func (o *PortalOverride) URL() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.url, o.held
}

// Rewrite substitutes the plugin portal URL while the override is held.
func (o *PortalOverride) Rewrite(url string) (string, bool) {
	override, held := o.URL()
	if !held {
		return url, false
	}
	if NormalizeURL(url) == NormalizeURL(KnownRepositories[PluginPortalName]) {
		return override, true
	}
	return url, false
}
