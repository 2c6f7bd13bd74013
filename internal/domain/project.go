package domain

import "path/filepath"

// DefaultBuildDirName is the build directory used when no override is recorded.
const DefaultBuildDirName = "build"

// Repository is a declared artifact repository of a project.
type Repository struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Project is the mutable model of one project, materialized from its
// descriptor during registration.
// Fields are ordered to minimize memory padding.
type Project struct {
	parent       *Project
	scope        *ClassLoaderScope
	baseScope    *ClassLoaderScope
	build        BuildIdentifier
	path         Path
	identityPath Path
	name         string
	dir          string
	buildDir     string
	children     []*Project
	repositories []Repository
}

// NewProject materializes the model for descriptor and links it under parent.
// The build directory defaults to "<dir>/build".
func NewProject(
	descriptor *ProjectDescriptor,
	parent *Project,
	build BuildIdentifier,
	buildIdentityPath Path,
	scope, baseScope *ClassLoaderScope,
) *Project {
	p := &Project{
		parent:       parent,
		scope:        scope,
		baseScope:    baseScope,
		build:        build,
		path:         descriptor.Path(),
		identityPath: buildIdentityPath.Append(descriptor.Path()),
		name:         descriptor.Name(),
		dir:          descriptor.Dir(),
		buildDir:     filepath.Join(descriptor.Dir(), DefaultBuildDirName),
	}
	if parent != nil {
		parent.children = append(parent.children, p)
	}
	return p
}

// Path returns the project path within its build.
func (p *Project) Path() Path { return p.path }

// IdentityPath returns the project path within the whole build tree.
func (p *Project) IdentityPath() Path { return p.identityPath }

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// ProjectDir returns the project directory.
func (p *Project) ProjectDir() string { return p.dir }

// BuildDir returns the build directory.
func (p *Project) BuildDir() string { return p.buildDir }

// SetBuildDir overrides the build directory.
func (p *Project) SetBuildDir(dir string) { p.buildDir = dir }

// Build returns the identifier of the owning build.
func (p *Project) Build() BuildIdentifier { return p.build }

// Parent returns the parent project, or nil for a root project.
func (p *Project) Parent() *Project { return p.parent }

// Children returns the child projects in registration order.
func (p *Project) Children() []*Project {
	out := make([]*Project, len(p.children))
	copy(out, p.children)
	return out
}

// ClassLoaderScope returns the scope the project's own classes live in.
func (p *Project) ClassLoaderScope() *ClassLoaderScope { return p.scope }

// BaseClassLoaderScope returns the scope child scripts are rooted at.
func (p *Project) BaseClassLoaderScope() *ClassLoaderScope { return p.baseScope }

// Repositories returns the declared repositories.
func (p *Project) Repositories() []Repository {
	out := make([]Repository, len(p.repositories))
	copy(out, p.repositories)
	return out
}

// SetRepositories replaces the declared repositories.
func (p *Project) SetRepositories(repos []Repository) {
	p.repositories = append([]Repository(nil), repos...)
}

// Walk visits p and its descendants, parents first.
func (p *Project) Walk(fn func(*Project)) {
	fn(p)
	for _, c := range p.children {
		c.Walk(fn)
	}
}
