// Package cachehost rebuilds a configured build model from the commands of a
// configuration cache entry without running any build script.
package cachehost

import (
	"github.com/runoshun/confcache/internal/domain"
)

// Services are the tree-level collaborators a host needs. Each is passed
// explicitly; nothing is looked up by type at runtime.
// Fields are ordered to minimize memory padding.
type Services struct {
	Tree      domain.BuildTreeState
	Scopes    domain.ScopeRegistry
	Projects  domain.ProjectStateRegistry
	Builds    domain.BuildStateRegistry
	Leases    domain.WorkerLeaseService
	Lifecycle domain.LifecycleControllerFactory
	Logger    domain.Logger
}

// Host is the entry point of rehydration for one build.
type Host struct {
	build domain.BuildState
	svc   Services
}

// NewHost creates a host for build.
func NewHost(build domain.BuildState, svc Services) *Host {
	if svc.Logger == nil {
		svc.Logger = domain.NopLogger{}
	}
	return &Host{build: build, svc: svc}
}

// BuildState returns the build the host is bound to.
func (h *Host) BuildState() domain.BuildState {
	return h.build
}

// CurrentBuild returns a read-only view of the build's scheduled work.
func (h *Host) CurrentBuild() *BuildView {
	return &BuildView{build: h.build.Mutable()}
}

// CreateBuild starts a rehydration session whose synthetic settings name the
// root project rootProjectName. A build hosts a single session.
func (h *Host) CreateBuild(rootProjectName string) (*Build, error) {
	b := &Build{
		state:     h.build,
		model:     h.build.Mutable(),
		svc:       h.svc,
		logger:    h.svc.Logger,
		buildDirs: make(map[domain.Path]string),
	}
	if err := b.createSettings(rootProjectName); err != nil {
		return nil, err
	}
	return b, nil
}

// BuildView exposes what a populated build has scheduled.
type BuildView struct {
	build *domain.Build
}

// IdentityPath returns the identity path of the build.
func (v *BuildView) IdentityPath() domain.Path {
	return v.build.IdentityPath()
}

// ScheduledWork returns the scheduled nodes plus their transitive
// dependencies, in execution order.
func (v *BuildView) ScheduledWork() []domain.Node {
	return v.build.TaskGraph().ScheduledWorkPlusDependencies()
}
