package projectstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
)

type fakeBuild struct {
	domain.BuildState
	id       domain.BuildIdentifier
	identity domain.Path
}

func (b fakeBuild) BuildIdentifier() domain.BuildIdentifier { return b.id }
func (b fakeBuild) IdentityPath() domain.Path               { return b.identity }

func descriptors(t *testing.T, paths ...string) *domain.DescriptorRegistry {
	t.Helper()
	r := domain.NewDescriptorRegistry("app", "/src")
	for _, p := range paths {
		_, err := r.Add(domain.MustParsePath(p), filepath.Join("/src", p[1:]))
		require.NoError(t, err)
	}
	return r
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := New()
	owner := fakeBuild{id: domain.BuildIdentifier{Name: "inc"}, identity: ":inc"}

	require.NoError(t, reg.RegisterProjects(owner, descriptors(t, ":lib", ":lib:api")))

	st, err := reg.StateFor(owner.id, ":lib:api")
	require.NoError(t, err)
	assert.Equal(t, domain.Path(":lib:api"), st.Path())
	assert.Equal(t, domain.Path(":inc:lib:api"), st.IdentityPath())
	assert.Len(t, reg.ProjectsOf(owner.id), 3)

	_, err = reg.StateFor(owner.id, ":missing")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = reg.StateFor(domain.BuildIdentifier{Name: "other"}, domain.RootPath)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestRegistry_RegisterTwice(t *testing.T) {
	reg := New()
	owner := fakeBuild{id: domain.RootBuildIdentifier(), identity: domain.RootPath}
	require.NoError(t, reg.RegisterProjects(owner, descriptors(t)))

	err := reg.RegisterProjects(owner, descriptors(t))
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

func TestState_CreateMutableModel(t *testing.T) {
	reg := New()
	owner := fakeBuild{id: domain.RootBuildIdentifier(), identity: domain.RootPath}
	require.NoError(t, reg.RegisterProjects(owner, descriptors(t, ":lib")))
	scope := domain.NewRootScope("core")

	lib, err := reg.StateFor(owner.id, ":lib")
	require.NoError(t, err)
	err = lib.CreateMutableModel(scope, scope, nil)
	assert.ErrorIs(t, err, domain.ErrModelNotCreated, "parent model must exist first")

	root, err := reg.StateFor(owner.id, domain.RootPath)
	require.NoError(t, err)
	require.NoError(t, root.CreateMutableModel(scope, scope, nil))
	require.NoError(t, lib.CreateMutableModel(scope, scope, func(p *domain.Project) {
		p.SetBuildDir("/out/lib")
	}))

	model, err := lib.MutableModel()
	require.NoError(t, err)
	assert.Equal(t, "/out/lib", model.BuildDir())
	rootModel, _ := root.MutableModel()
	assert.Same(t, rootModel, model.Parent())
	assert.Equal(t, filepath.Join("/src", "build"), rootModel.BuildDir())

	err = lib.CreateMutableModel(scope, scope, nil)
	assert.ErrorIs(t, err, domain.ErrModelAlreadyCreated)
}
