package domain

import "sync"

// RootBuildName is the identifier name of the root build of a tree.
const RootBuildName = ":"

// BuildIdentifier identifies a build within a build tree.
type BuildIdentifier struct {
	Name string
}

// RootBuildIdentifier returns the identifier of the root build.
func RootBuildIdentifier() BuildIdentifier {
	return BuildIdentifier{Name: RootBuildName}
}

// IsRoot reports whether id names the root build.
func (id BuildIdentifier) IsRoot() bool {
	return id.Name == RootBuildName
}

// String returns the identifier name.
func (id BuildIdentifier) String() string {
	return id.Name
}

// StartParameter holds the invocation parameters a build was started with.
type StartParameter struct {
	ProjectProperties map[string]string `yaml:"projectProperties,omitempty" json:"projectProperties,omitempty"`
	TaskNames         []string          `yaml:"taskNames,omitempty" json:"taskNames,omitempty"`
	Offline           bool              `yaml:"offline,omitempty" json:"offline,omitempty"`
}

// BuildDefinition carries the coordinates and configuration of a build.
type BuildDefinition struct {
	StartParameter StartParameter `yaml:"startParameter,omitempty" json:"startParameter,omitempty"`
	Name           string         `yaml:"name" json:"name"`
	RootDir        string         `yaml:"rootDir" json:"rootDir"`
}

// Build is the mutable model of one build: its settings, project tree and
// task graph. It is bound to exactly one BuildState.
// Fields are ordered to minimize memory padding.
type Build struct {
	owner            BuildState
	taskGraph        TaskGraph
	scope            *ClassLoaderScope
	baseProjectScope *ClassLoaderScope
	settings         *Settings
	rootProject      *Project
	defaultProject   *Project
	rootDir          string
	startParameter   StartParameter
	mu               sync.RWMutex
}

// NewBuild creates the build model owned by owner.
func NewBuild(owner BuildState, def BuildDefinition, scope *ClassLoaderScope, graph TaskGraph) *Build {
	return &Build{
		owner:          owner,
		taskGraph:      graph,
		scope:          scope,
		rootDir:        def.RootDir,
		startParameter: def.StartParameter,
	}
}

// Owner returns the build state that owns this model.
func (b *Build) Owner() BuildState { return b.owner }

// IdentityPath returns the owner's identity path.
func (b *Build) IdentityPath() Path { return b.owner.IdentityPath() }

// RootDir returns the build root directory.
func (b *Build) RootDir() string { return b.rootDir }

// StartParameter returns the invocation parameters.
func (b *Build) StartParameter() StartParameter { return b.startParameter }

// ClassLoaderScope returns the build's own scope.
func (b *Build) ClassLoaderScope() *ClassLoaderScope { return b.scope }

// TaskGraph returns the execution plan of the build.
func (b *Build) TaskGraph() TaskGraph { return b.taskGraph }

// Settings returns the settings, or nil before they are created.
func (b *Build) Settings() *Settings {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settings
}

// SetSettings attaches settings. Settings are created once per build.
func (b *Build) SetSettings(s *Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settings != nil {
		return ErrSettingsAlreadySet
	}
	b.settings = s
	return nil
}

// BaseProjectClassLoaderScope returns the scope project scopes derive from.
func (b *Build) BaseProjectClassLoaderScope() *ClassLoaderScope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.baseProjectScope
}

// SetBaseProjectClassLoaderScope sets the scope project scopes derive from.
func (b *Build) SetBaseProjectClassLoaderScope(s *ClassLoaderScope) {
	b.mu.Lock()
	b.baseProjectScope = s
	b.mu.Unlock()
}

// RootProject returns the root project model, or nil before registration.
func (b *Build) RootProject() *Project {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rootProject
}

// SetRootProject sets the root project model.
func (b *Build) SetRootProject(p *Project) {
	b.mu.Lock()
	b.rootProject = p
	b.mu.Unlock()
}

// DefaultProject returns the default project model.
func (b *Build) DefaultProject() *Project {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.defaultProject
}

// SetDefaultProject sets the default project model.
func (b *Build) SetDefaultProject(p *Project) {
	b.mu.Lock()
	b.defaultProject = p
	b.mu.Unlock()
}
