// Package projectstate provides the build-tree-wide registry of project
// states, keyed by build identity and project path.
package projectstate

import (
	"fmt"
	"sync"

	"github.com/runoshun/confcache/internal/domain"
)

// State is the authoritative state of one project. It materializes the
// mutable model at most once.
// Fields are ordered to minimize memory padding.
type State struct {
	owner      domain.BuildState
	registry   *Registry
	descriptor *domain.ProjectDescriptor
	model      *domain.Project
	mu         sync.RWMutex
}

var _ domain.ProjectState = (*State)(nil)

// Path returns the project path within its build.
func (s *State) Path() domain.Path {
	return s.descriptor.Path()
}

// IdentityPath returns the project path within the build tree.
func (s *State) IdentityPath() domain.Path {
	return s.owner.IdentityPath().Append(s.descriptor.Path())
}

// Owner returns the owning build.
func (s *State) Owner() domain.BuildState {
	return s.owner
}

// Descriptor returns the descriptor the state was registered from.
func (s *State) Descriptor() *domain.ProjectDescriptor {
	return s.descriptor
}

// CreateMutableModel materializes the model under its parent's model.
// configure runs before the model is published.
func (s *State) CreateMutableModel(scope, baseScope *domain.ClassLoaderScope, configure func(*domain.Project)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != nil {
		return fmt.Errorf("%w: %s", domain.ErrModelAlreadyCreated, s.IdentityPath())
	}

	var parent *domain.Project
	if pd := s.descriptor.Parent(); pd != nil {
		ps, err := s.registry.state(s.owner.BuildIdentifier(), pd.Path())
		if err != nil {
			return err
		}
		parent, err = ps.MutableModel()
		if err != nil {
			return fmt.Errorf("parent of %s: %w", s.Path(), err)
		}
	}

	model := domain.NewProject(s.descriptor, parent, s.owner.BuildIdentifier(), s.owner.IdentityPath(), scope, baseScope)
	if configure != nil {
		configure(model)
	}
	s.model = model
	return nil
}

// MutableModel returns the model, or ErrModelNotCreated.
func (s *State) MutableModel() (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotCreated, s.IdentityPath())
	}
	return s.model, nil
}

type buildProjects struct {
	byPath map[domain.Path]*State
	order  []*State
}

// Registry implements domain.ProjectStateRegistry. Callers mutating it from
// several builds hold the tree's worker lease; the internal lock only keeps
// readers consistent.
type Registry struct {
	builds map[domain.BuildIdentifier]*buildProjects
	mu     sync.RWMutex
}

var _ domain.ProjectStateRegistry = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{builds: make(map[domain.BuildIdentifier]*buildProjects)}
}

// RegisterProjects registers every descriptor of owner, parents first.
// A build registers its projects exactly once.
func (r *Registry) RegisterProjects(owner domain.BuildState, descriptors *domain.DescriptorRegistry) error {
	id := owner.BuildIdentifier()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builds[id]; exists {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, id)
	}

	bp := &buildProjects{byPath: make(map[domain.Path]*State, descriptors.Len())}
	_ = descriptors.Walk(func(d *domain.ProjectDescriptor) error {
		st := &State{owner: owner, registry: r, descriptor: d}
		bp.byPath[d.Path()] = st
		bp.order = append(bp.order, st)
		return nil
	})
	r.builds[id] = bp
	return nil
}

// StateFor returns the state of the project at path in build.
func (r *Registry) StateFor(build domain.BuildIdentifier, path domain.Path) (domain.ProjectState, error) {
	return r.state(build, path)
}

func (r *Registry) state(build domain.BuildIdentifier, path domain.Path) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bp, ok := r.builds[build]
	if !ok {
		return nil, fmt.Errorf("%w: build %s has no registered projects", domain.ErrProjectNotFound, build)
	}
	st, ok := bp.byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s in build %s", domain.ErrProjectNotFound, path, build)
	}
	return st, nil
}

// ProjectsOf returns the states of build in registration order.
func (r *Registry) ProjectsOf(build domain.BuildIdentifier) []domain.ProjectState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bp, ok := r.builds[build]
	if !ok {
		return nil
	}
	out := make([]domain.ProjectState, len(bp.order))
	for i, st := range bp.order {
		out[i] = st
	}
	return out
}
