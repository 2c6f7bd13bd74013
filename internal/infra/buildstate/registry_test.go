package buildstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/lifecycle"
	"github.com/runoshun/confcache/internal/infra/projectstate"
	"github.com/runoshun/confcache/internal/infra/scopes"
	"github.com/runoshun/confcache/internal/infra/workerlease"
)

type fakeTree struct {
	scopes domain.ScopeRegistry
}

func (t fakeTree) ID() string { return "test" }

func (t fakeTree) Scopes() domain.ScopeRegistry { return t.scopes }

func (t fakeTree) ResolveRepository(u string) string { return u }

type factory struct {
	tree      fakeTree
	lease     domain.WorkerLease
	lifecycle domain.LifecycleControllerFactory
	projects  domain.ProjectStateRegistry
	prepared  []domain.IncludedBuildState
	createErr error
}

func (f *factory) CreateBuild(id domain.BuildIdentifier, identityPath domain.Path, def domain.BuildDefinition, implicit bool, owner domain.BuildState) (domain.IncludedBuildState, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return NewIncludedBuild(IncludedBuildParams{
		Owner:        owner,
		Tree:         f.tree,
		Lease:        f.lease,
		Lifecycle:    f.lifecycle,
		Projects:     f.projects,
		ID:           id,
		IdentityPath: identityPath,
		Definition:   def,
		Implicit:     implicit,
	}), nil
}

func (f *factory) PrepareBuild(b domain.IncludedBuildState) error {
	f.prepared = append(f.prepared, b)
	return nil
}

func setup() (*Registry, *RootBuild, *factory) {
	sc := scopes.New()
	lf := lifecycle.NewFactory()
	projects := projectstate.New()
	lease := workerlease.New("test").CurrentWorkerLease()
	root := NewRootBuild(domain.BuildDefinition{Name: "app", RootDir: "/src"}, sc, lf, projects, lease)
	f := &factory{tree: fakeTree{scopes: sc}, lease: lease, lifecycle: lf, projects: projects}
	return NewRegistry(root, nil), root, f
}

func TestRegistry_AddIncludedBuildOf(t *testing.T) {
	reg, root, f := setup()

	inc, err := reg.AddIncludedBuildOf(f, root, domain.BuildDefinition{Name: "plugins", RootDir: "/src/plugins"})
	require.NoError(t, err)

	assert.Equal(t, domain.Path(":plugins"), inc.IdentityPath())
	assert.Same(t, root, inc.Owner())
	assert.Same(t, root.WorkerLease(), inc.WorkerLease())
	assert.Same(t, root.LifecycleControllerFactory(), inc.LifecycleControllerFactory())
	assert.Equal(t, []domain.IncludedBuildState{inc}, f.prepared)

	got, err := reg.Build(domain.BuildIdentifier{Name: "plugins"})
	require.NoError(t, err)
	assert.Same(t, inc, got)
	assert.Equal(t, []domain.IncludedBuildState{inc}, reg.IncludedBuilds())
}

func TestRegistry_NestedIdentityPath(t *testing.T) {
	reg, root, f := setup()
	outer, err := reg.AddIncludedBuildOf(f, root, domain.BuildDefinition{Name: "outer"})
	require.NoError(t, err)

	inner, err := reg.AddIncludedBuildOf(f, outer, domain.BuildDefinition{Name: "inner"})
	require.NoError(t, err)

	assert.Equal(t, domain.Path(":outer:inner"), inner.IdentityPath())
}

func TestRegistry_DuplicateBuild(t *testing.T) {
	reg, root, f := setup()
	_, err := reg.AddIncludedBuildOf(f, root, domain.BuildDefinition{Name: "inc"})
	require.NoError(t, err)

	_, err = reg.AddIncludedBuildOf(f, root, domain.BuildDefinition{Name: "inc"})
	assert.ErrorIs(t, err, domain.ErrDuplicateBuild)
	assert.Len(t, reg.IncludedBuilds(), 1)
}

func TestRegistry_CreateFailureRegistersNothing(t *testing.T) {
	reg, root, f := setup()
	f.createErr = errors.New("boom")

	_, err := reg.AddIncludedBuildOf(f, root, domain.BuildDefinition{Name: "inc"})
	require.Error(t, err)

	_, err = reg.Build(domain.BuildIdentifier{Name: "inc"})
	assert.ErrorIs(t, err, domain.ErrBuildNotFound)
}

func TestIncludedBuild_ScopeRootedIndependently(t *testing.T) {
	reg, root, f := setup()
	inc, err := reg.AddIncludedBuildOf(f, root, domain.BuildDefinition{Name: "inc"})
	require.NoError(t, err)

	rootScope := root.Mutable().ClassLoaderScope()
	incScope := inc.Mutable().ClassLoaderScope()

	assert.Equal(t, []string{"core", "core+plugins", "build-inc"}, incScope.Ancestry())
	assert.False(t, incScope.IsDescendantOf(rootScope))
	assert.Same(t, inc.Mutable(), inc.Mutable())
	assert.Same(t, inc, inc.Mutable().Owner())
}
