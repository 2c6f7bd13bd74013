// Package buildtree assembles the services shared by every build of one
// build tree and bounds their lifetime.
package buildtree

import (
	"errors"
	"sync"

	"github.com/runoshun/confcache/internal/cachehost"
	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/buildstate"
	"github.com/runoshun/confcache/internal/infra/lifecycle"
	"github.com/runoshun/confcache/internal/infra/projectstate"
	"github.com/runoshun/confcache/internal/infra/scopes"
	"github.com/runoshun/confcache/internal/infra/workerlease"
)

// Options configure a tree.
// Fields are ordered to minimize memory padding.
type Options struct {
	Mirrors           map[string]string
	Portal            *domain.PortalOverride
	Logger            domain.Logger
	ID                string
	PortalOverrideURL string
	Definition        domain.BuildDefinition
	Env               domain.Environment
}

// Tree owns the registries, the worker lease, the lifecycle factory and the
// plugin portal override of one build tree. Close releases them.
// Fields are ordered to minimize memory padding.
type Tree struct {
	scopes     *scopes.Registry
	leases     *workerlease.Service
	lifecycle  *lifecycle.Factory
	projects   *projectstate.Registry
	builds     *buildstate.Registry
	root       *buildstate.RootBuild
	portal     *domain.PortalOverride
	logger     domain.Logger
	mirrors    domain.MirrorPolicy
	id         string
	closeOnce  sync.Once
	portalHeld bool
}

var _ domain.BuildTreeState = (*Tree)(nil)

// New creates a tree rooted at opts.Definition. When an override URL is
// configured and the host allows it, the tree holds the plugin portal
// override until Close. An override already held by another tree is left
// alone and this tree runs without one.
func New(opts Options) (*Tree, error) {
	logger := opts.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	id := opts.ID
	if id == "" {
		id = opts.Definition.Name
	}

	t := &Tree{
		scopes:    scopes.New(),
		leases:    workerlease.New(id),
		lifecycle: lifecycle.NewFactory(),
		projects:  projectstate.New(),
		portal:    opts.Portal,
		logger:    logger,
		mirrors:   domain.NewMirrorPolicy(opts.Env, opts.Mirrors),
		id:        id,
	}
	t.root = buildstate.NewRootBuild(opts.Definition, t.scopes, t.lifecycle, t.projects, t.leases.CurrentWorkerLease())
	t.builds = buildstate.NewRegistry(t.root, logger)

	if opts.PortalOverrideURL != "" && t.portal != nil {
		if !opts.Env.PortalOverrideAllowed() {
			logger.Info("", "tree", "plugin portal override skipped on this host")
		} else {
			if err := t.portal.Acquire(opts.PortalOverrideURL); err != nil {
				if !errors.Is(err, domain.ErrPortalOverrideHeld) {
					t.leases.Release()
					return nil, err
				}
				logger.Info("", "tree", "plugin portal override already installed, leaving it in place")
			} else {
				t.portalHeld = true
				logger.Debug("", "tree", "plugin portal override "+opts.PortalOverrideURL)
			}
		}
	}
	return t, nil
}

// ID identifies the tree.
func (t *Tree) ID() string {
	return t.id
}

// Scopes returns the classloader scope registry.
func (t *Tree) Scopes() domain.ScopeRegistry {
	return t.scopes
}

// Root returns the root build state.
func (t *Tree) Root() *buildstate.RootBuild {
	return t.root
}

// Builds returns the build-state registry.
func (t *Tree) Builds() domain.BuildStateRegistry {
	return t.builds
}

// Projects returns the project-state registry.
func (t *Tree) Projects() domain.ProjectStateRegistry {
	return t.projects
}

// PortalOverridden reports whether the tree holds the portal override.
func (t *Tree) PortalOverridden() bool {
	return t.portalHeld
}

// Services returns the collaborators of a cachehost.Host.
func (t *Tree) Services() cachehost.Services {
	return cachehost.Services{
		Tree:      t,
		Scopes:    t.scopes,
		Projects:  t.projects,
		Builds:    t.builds,
		Leases:    t.leases,
		Lifecycle: t.lifecycle,
		Logger:    t.logger,
	}
}

// Host returns a host bound to the root build.
func (t *Tree) Host() *cachehost.Host {
	return cachehost.NewHost(t.root, t.Services())
}

// ResolveRepository substitutes the plugin portal while the override is
// held, otherwise applies the mirror policy.
func (t *Tree) ResolveRepository(url string) string {
	if t.portalHeld {
		if rewritten, ok := t.portal.Rewrite(url); ok {
			return rewritten
		}
	}
	if rewritten, ok := t.mirrors.Rewrite(url); ok {
		return rewritten
	}
	return url
}

// Close finishes every build, releases the lease and gives the portal
// override back. It is safe to call more than once.
func (t *Tree) Close() {
	t.closeOnce.Do(func() {
		t.lifecycle.FinishAll()
		t.leases.Release()
		if t.portalHeld {
			t.portal.Release()
		}
	})
}
