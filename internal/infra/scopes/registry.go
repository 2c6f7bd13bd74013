// Package scopes provides the process-wide classloader scope registry.
package scopes

import "github.com/runoshun/confcache/internal/domain"

// Scope names.
const (
	CoreName           = "core"
	CoreAndPluginsName = "core+plugins"
)

// Registry exposes the core and core+plugins scopes. core+plugins is a child
// of core, so every scope derived from it also descends from core.
type Registry struct {
	core           *domain.ClassLoaderScope
	coreAndPlugins *domain.ClassLoaderScope
}

var _ domain.ScopeRegistry = (*Registry)(nil)

// New creates a registry with fresh scope roots.
func New() *Registry {
	core := domain.NewRootScope(CoreName)
	return &Registry{
		core:           core,
		coreAndPlugins: core.CreateChild(CoreAndPluginsName),
	}
}

// CoreScope returns the engine-internals scope.
func (r *Registry) CoreScope() *domain.ClassLoaderScope {
	return r.core
}

// CoreAndPluginsScope returns the engine-plus-plugins scope.
func (r *Registry) CoreAndPluginsScope() *domain.ClassLoaderScope {
	return r.coreAndPlugins
}
