// Package buildstate provides the build states of a build tree and the
// registry that tracks them.
package buildstate

import (
	"sync"

	"github.com/runoshun/confcache/internal/domain"
)

// RootBuildScopeName names the classloader scope of the root build.
const RootBuildScopeName = "root-build"

// RootBuild is the state of the root build of a tree.
// Fields are ordered to minimize memory padding.
type RootBuild struct {
	scopes     domain.ScopeRegistry
	lifecycle  domain.LifecycleControllerFactory
	projects   domain.ProjectStateRegistry
	lease      domain.WorkerLease
	controller domain.LifecycleController
	def        domain.BuildDefinition
	once       sync.Once
}

var _ domain.BuildState = (*RootBuild)(nil)

// NewRootBuild creates the root build state wired to the tree services.
func NewRootBuild(
	def domain.BuildDefinition,
	scopes domain.ScopeRegistry,
	lifecycle domain.LifecycleControllerFactory,
	projects domain.ProjectStateRegistry,
	lease domain.WorkerLease,
) *RootBuild {
	return &RootBuild{
		scopes:    scopes,
		lifecycle: lifecycle,
		projects:  projects,
		lease:     lease,
		def:       def,
	}
}

// BuildIdentifier returns the root build identifier.
func (b *RootBuild) BuildIdentifier() domain.BuildIdentifier {
	return domain.RootBuildIdentifier()
}

// IdentityPath returns the root path.
func (b *RootBuild) IdentityPath() domain.Path {
	return domain.RootPath
}

// IsImplicit is always false for the root build.
func (b *RootBuild) IsImplicit() bool {
	return false
}

// Definition returns the root build definition.
func (b *RootBuild) Definition() domain.BuildDefinition {
	return b.def
}

// WorkerLease returns the tree lease.
func (b *RootBuild) WorkerLease() domain.WorkerLease {
	return b.lease
}

// LifecycleControllerFactory returns the tree's controller factory.
func (b *RootBuild) LifecycleControllerFactory() domain.LifecycleControllerFactory {
	return b.lifecycle
}

// Lifecycle returns the controller, creating it on first use.
func (b *RootBuild) Lifecycle() domain.LifecycleController {
	b.once.Do(func() {
		scope := b.scopes.CoreAndPluginsScope().CreateChild(RootBuildScopeName)
		b.controller = b.lifecycle.NewController(b, b.def, scope)
	})
	return b.controller
}

// Mutable returns the mutable model of the root build.
func (b *RootBuild) Mutable() *domain.Build {
	return b.Lifecycle().Build()
}

// Project returns the state of the project at path.
func (b *RootBuild) Project(path domain.Path) (domain.ProjectState, error) {
	return b.projects.StateFor(b.BuildIdentifier(), path)
}

// IncludedBuildParams are the inputs of NewIncludedBuild.
// Fields are ordered to minimize memory padding.
type IncludedBuildParams struct {
	Owner        domain.BuildState
	Tree         domain.BuildTreeState
	Lease        domain.WorkerLease
	Lifecycle    domain.LifecycleControllerFactory
	Projects     domain.ProjectStateRegistry
	ID           domain.BuildIdentifier
	IdentityPath domain.Path
	Definition   domain.BuildDefinition
	Implicit     bool
}

// IncludedBuild is the state of a nested build. Its coordination services
// are the owner's own instances, while its classloader scope is rooted at
// the tree's core+plugins scope rather than below the owner's scope.
type IncludedBuild struct {
	controller domain.LifecycleController
	p          IncludedBuildParams
	once       sync.Once
}

var _ domain.IncludedBuildState = (*IncludedBuild)(nil)

// NewIncludedBuild creates an included build state.
func NewIncludedBuild(p IncludedBuildParams) *IncludedBuild {
	return &IncludedBuild{p: p}
}

// BuildIdentifier returns the build identity.
func (b *IncludedBuild) BuildIdentifier() domain.BuildIdentifier { return b.p.ID }

// IdentityPath returns the location of the build in the tree.
func (b *IncludedBuild) IdentityPath() domain.Path { return b.p.IdentityPath }

// IsImplicit reports whether the build was included implicitly.
func (b *IncludedBuild) IsImplicit() bool { return b.p.Implicit }

// Definition returns the build definition.
func (b *IncludedBuild) Definition() domain.BuildDefinition { return b.p.Definition }

// Owner returns the including build.
func (b *IncludedBuild) Owner() domain.BuildState { return b.p.Owner }

// WorkerLease returns the lease inherited from the owner.
func (b *IncludedBuild) WorkerLease() domain.WorkerLease { return b.p.Lease }

// LifecycleControllerFactory returns the factory shared with the owner.
func (b *IncludedBuild) LifecycleControllerFactory() domain.LifecycleControllerFactory {
	return b.p.Lifecycle
}

// Tree returns the build tree the build belongs to.
func (b *IncludedBuild) Tree() domain.BuildTreeState { return b.p.Tree }

// Lifecycle returns the controller, creating it on first use.
func (b *IncludedBuild) Lifecycle() domain.LifecycleController {
	b.once.Do(func() {
		scope := b.p.Tree.Scopes().CoreAndPluginsScope().CreateChild("build-" + b.p.Definition.Name)
		b.controller = b.p.Lifecycle.NewController(b, b.p.Definition, scope)
	})
	return b.controller
}

// Mutable returns the mutable model of the build.
func (b *IncludedBuild) Mutable() *domain.Build {
	return b.Lifecycle().Build()
}

// Project returns the state of the project at path.
func (b *IncludedBuild) Project(path domain.Path) (domain.ProjectState, error) {
	return b.p.Projects.StateFor(b.p.ID, path)
}
