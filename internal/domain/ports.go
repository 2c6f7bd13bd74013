package domain

import (
	"context"
	"time"
)

// BuildState is the build-tree-wide handle of one build.
type BuildState interface {
	// BuildIdentifier returns the build identity.
	BuildIdentifier() BuildIdentifier

	// IdentityPath locates the build within the build tree.
	IdentityPath() Path

	// IsImplicit reports whether the build was included implicitly.
	IsImplicit() bool

	// Lifecycle returns the controller that owns the mutable build model.
	Lifecycle() LifecycleController

	// Mutable returns the mutable build model, creating it on first use.
	Mutable() *Build

	// Project returns the authoritative state of the project at path.
	Project(path Path) (ProjectState, error)
}

// IncludedBuildState is a nested build of a composite build tree.
type IncludedBuildState interface {
	BuildState

	// Definition returns the coordinates and configuration of the build.
	Definition() BuildDefinition

	// Owner returns the build that included this one.
	Owner() BuildState

	// WorkerLease returns the lease inherited from the owning build.
	WorkerLease() WorkerLease

	// LifecycleControllerFactory returns the factory shared with the owner.
	LifecycleControllerFactory() LifecycleControllerFactory
}

// IncludedBuildFactory creates included builds on behalf of the build-state registry.
type IncludedBuildFactory interface {
	// CreateBuild constructs the state of a new included build.
	CreateBuild(id BuildIdentifier, identityPath Path, def BuildDefinition, implicit bool, owner BuildState) (IncludedBuildState, error)

	// PrepareBuild runs once the build is registered.
	PrepareBuild(build IncludedBuildState) error
}

// BuildStateRegistry is the build-tree-wide registry of builds.
type BuildStateRegistry interface {
	// Root returns the root build.
	Root() BuildState

	// AddIncludedBuildOf creates, registers and prepares a build included by owner.
	AddIncludedBuildOf(factory IncludedBuildFactory, owner BuildState, def BuildDefinition) (IncludedBuildState, error)

	// Build returns the registered build with the given identity.
	Build(id BuildIdentifier) (BuildState, error)

	// IncludedBuilds returns the included builds in registration order.
	IncludedBuilds() []IncludedBuildState
}

// ProjectState is the authoritative, build-tree-wide state of one project.
type ProjectState interface {
	// Path returns the project path within its build.
	Path() Path

	// IdentityPath returns the project path within the build tree.
	IdentityPath() Path

	// Owner returns the owning build.
	Owner() BuildState

	// CreateMutableModel materializes the project model. configure runs
	// before the model becomes visible to any other component.
	CreateMutableModel(scope, baseScope *ClassLoaderScope, configure func(*Project)) error

	// MutableModel returns the model created by CreateMutableModel.
	MutableModel() (*Project, error)
}

// ProjectStateRegistry is the build-tree-wide registry of projects.
type ProjectStateRegistry interface {
	// RegisterProjects makes every descriptor of owner resolvable by path.
	RegisterProjects(owner BuildState, descriptors *DescriptorRegistry) error

	// StateFor returns the state of the project at path in build.
	StateFor(build BuildIdentifier, path Path) (ProjectState, error)

	// ProjectsOf returns the states of a build in registration order.
	ProjectsOf(build BuildIdentifier) []ProjectState
}

// WorkerLease is the token guarding build-tree-wide mutable state.
type WorkerLease interface {
	// ID identifies the lease.
	ID() string

	// WithLease runs fn while holding the lease. Calls must not nest.
	WithLease(fn func() error) error
}

// WorkerLeaseService hands out the lease of the current worker.
type WorkerLeaseService interface {
	CurrentWorkerLease() WorkerLease
}

// LifecycleController owns the mutable model of one build and its stage.
type LifecycleController interface {
	// Build returns the mutable build model.
	Build() *Build

	// Stage returns the current stage.
	Stage() BuildStage

	// TransitionTo moves the build to stage.
	TransitionTo(stage BuildStage) error
}

// LifecycleControllerFactory creates lifecycle controllers.
type LifecycleControllerFactory interface {
	NewController(owner BuildState, def BuildDefinition, scope *ClassLoaderScope) LifecycleController
}

// ScopeRegistry exposes the process-wide classloader scopes.
type ScopeRegistry interface {
	// CoreScope holds engine internals only.
	CoreScope() *ClassLoaderScope

	// CoreAndPluginsScope holds engine internals and loaded plugin classes.
	CoreAndPluginsScope() *ClassLoaderScope
}

// TaskGraph is the live, schedulable execution plan of a build.
type TaskGraph interface {
	// AddNodes adds already-linked nodes as requested work.
	AddNodes(nodes []Node) error

	// Populate computes and validates the dependency closure. Once only.
	Populate() error

	// IsPopulated reports whether Populate succeeded.
	IsPopulated() bool

	// RequestedNodes returns the nodes passed to AddNodes, in order.
	RequestedNodes() []Node

	// ScheduledWorkPlusDependencies returns the populated closure in execution order.
	ScheduledWorkPlusDependencies() []Node
}

// BuildTreeState exposes tree-level services to included builds.
type BuildTreeState interface {
	// ID identifies the build tree.
	ID() string

	// Scopes returns the classloader scope registry.
	Scopes() ScopeRegistry

	// ResolveRepository applies the portal override and mirror policy to url.
	ResolveRepository(url string) string
}

// EntryStore persists cache entries.
type EntryStore interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error

	// Get retrieves an entry. Returns ErrEntryNotFound if absent.
	Get(key string) (*CacheEntry, error)

	// List returns summaries of all entries sorted by key.
	List() ([]EntrySummary, error)

	// Save creates or replaces an entry.
	Save(entry *CacheEntry) error

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(key string) error
}

// EntryCodec converts entries to and from their file form.
type EntryCodec interface {
	Decode(data []byte) (*CacheEntry, error)
	Encode(entry *CacheEntry) ([]byte, error)
}

// Rehydrator rebuilds a build tree from a cache entry.
type Rehydrator interface {
	// Rehydrate replays entry and returns a snapshot of the result.
	Rehydrate(ctx context.Context, entry *CacheEntry) (*BuildSummary, error)
}

// RepositoryResolver applies the mirror policy and the plugin portal
// override of a fresh build tree to repository URLs.
type RepositoryResolver interface {
	// ResolveRepositories returns the effective URLs in input order and
	// whether the portal override was in effect.
	ResolveRepositories(urls []string) ([]string, bool, error)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration.
	Load() (*Config, error)

	// LoadWithOptions returns the merged configuration ignoring some sources.
	LoadWithOptions(opts LoadConfigOptions) (*Config, error)
}

// ConfigInfo describes one configuration file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// GetRepoConfigInfo returns information about the repository config file.
	GetRepoConfigInfo() ConfigInfo

	// GetOverrideConfigInfo returns information about the local override file.
	GetOverrideConfigInfo() ConfigInfo

	// InitRepoConfig writes the default repository config file.
	InitRepoConfig() error

	// InitGlobalConfig writes the default global config file.
	InitGlobalConfig() error
}

// LoadConfigOptions selects configuration sources to ignore.
type LoadConfigOptions struct {
	IgnoreGlobal   bool
	IgnoreRepo     bool
	IgnoreOverride bool
}

// Logger records an operational trail, globally and per build.
type Logger interface {
	Debug(build, category, msg string)
	Info(build, category, msg string)
	Warn(build, category, msg string)
	Error(build, category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(_, _, _ string) {}
func (NopLogger) Info(_, _, _ string)  {}
func (NopLogger) Warn(_, _, _ string)  {}
func (NopLogger) Error(_, _, _ string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// StoreInitializer prepares an entry store for first use.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error

	// IsInitialized reports whether the store exists.
	IsInitialized() bool
}

// EntrySnapshotter is implemented by entry stores that can record and
// restore the whole set of entries.
type EntrySnapshotter interface {
	// Snapshot records the current entries under name.
	Snapshot(name string) error

	// RestoreSnapshot replaces all entries with snapshot name.
	RestoreSnapshot(name string) error

	// ListSnapshots returns the snapshot names, sorted.
	ListSnapshots() ([]string, error)
}
