package buildstate

import (
	"fmt"
	"sync"

	"github.com/runoshun/confcache/internal/domain"
)

// Registry implements domain.BuildStateRegistry.
type Registry struct {
	root   domain.BuildState
	byID   map[domain.BuildIdentifier]domain.BuildState
	order  []domain.IncludedBuildState
	logger domain.Logger
	mu     sync.RWMutex
}

var _ domain.BuildStateRegistry = (*Registry)(nil)

// NewRegistry creates a registry holding root.
func NewRegistry(root domain.BuildState, logger domain.Logger) *Registry {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Registry{
		root:   root,
		byID:   map[domain.BuildIdentifier]domain.BuildState{root.BuildIdentifier(): root},
		logger: logger,
	}
}

// Root returns the root build.
func (r *Registry) Root() domain.BuildState {
	return r.root
}

// AddIncludedBuildOf creates the build through factory, registers it under
// the definition name and prepares it. The identity path is the definition
// name below the owner's identity path.
func (r *Registry) AddIncludedBuildOf(factory domain.IncludedBuildFactory, owner domain.BuildState, def domain.BuildDefinition) (domain.IncludedBuildState, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: included build without a name", domain.ErrInvalidPath)
	}
	id := domain.BuildIdentifier{Name: def.Name}
	identityPath := owner.IdentityPath().Child(def.Name)

	r.mu.Lock()
	if _, exists := r.byID[id]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateBuild, id)
	}
	build, err := factory.CreateBuild(id, identityPath, def, false, owner)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.byID[id] = build
	r.order = append(r.order, build)
	r.mu.Unlock()

	r.logger.Debug(owner.IdentityPath().String(), "registry", "included build "+identityPath.String())
	if err := factory.PrepareBuild(build); err != nil {
		return nil, err
	}
	return build, nil
}

// Build returns the registered build with the given identity.
func (r *Registry) Build(id domain.BuildIdentifier) (domain.BuildState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBuildNotFound, id)
	}
	return b, nil
}

// IncludedBuilds returns the included builds in registration order.
func (r *Registry) IncludedBuilds() []domain.IncludedBuildState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.IncludedBuildState(nil), r.order...)
}
