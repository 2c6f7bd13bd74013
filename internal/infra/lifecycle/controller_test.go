package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
)

type stubBuild struct{ domain.BuildState }

func (stubBuild) IdentityPath() domain.Path { return ":inc" }

func TestFactory_NewController(t *testing.T) {
	f := NewFactory()
	scope := domain.NewRootScope("core")
	def := domain.BuildDefinition{Name: "inc", RootDir: "/src/inc"}

	c := f.NewController(stubBuild{}, def, scope)

	assert.Equal(t, domain.StageCreated, c.Stage())
	assert.Same(t, scope, c.Build().ClassLoaderScope())
	assert.Equal(t, "/src/inc", c.Build().RootDir())
	assert.NotNil(t, c.Build().TaskGraph())
	assert.Len(t, f.Controllers(), 1)
}

func TestController_Transitions(t *testing.T) {
	c := NewFactory().NewController(stubBuild{}, domain.BuildDefinition{}, domain.NewRootScope("core"))

	err := c.TransitionTo(domain.StageScheduled)
	assert.ErrorIs(t, err, domain.ErrInvalidStage)

	require.NoError(t, c.TransitionTo(domain.StageConfigured))
	require.NoError(t, c.TransitionTo(domain.StageScheduled))
	assert.Equal(t, domain.StageScheduled, c.Stage())
}

func TestFactory_FinishAll(t *testing.T) {
	f := NewFactory()
	a := f.NewController(stubBuild{}, domain.BuildDefinition{}, domain.NewRootScope("core"))
	b := f.NewController(stubBuild{}, domain.BuildDefinition{}, domain.NewRootScope("core"))
	require.NoError(t, b.TransitionTo(domain.StageFinished))

	f.FinishAll()

	assert.Equal(t, domain.StageFinished, a.Stage())
	assert.Equal(t, domain.StageFinished, b.Stage())
}
