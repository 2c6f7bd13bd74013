// Package lifecycle provides build lifecycle controllers. A controller owns
// the mutable model of one build and tracks the stage it has reached.
package lifecycle

import (
	"fmt"
	"sync"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/taskgraph"
)

// Controller implements domain.LifecycleController.
type Controller struct {
	build *domain.Build
	stage domain.BuildStage
	mu    sync.Mutex
}

var _ domain.LifecycleController = (*Controller)(nil)

// Build returns the mutable build model.
func (c *Controller) Build() *domain.Build {
	return c.build
}

// Stage returns the current stage.
func (c *Controller) Stage() domain.BuildStage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// TransitionTo moves the build to stage following the stage table.
func (c *Controller) TransitionTo(stage domain.BuildStage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stage.CanTransitionTo(stage) {
		return fmt.Errorf("%w: %s -> %s (build %s)", domain.ErrInvalidStage, c.stage, stage, c.build.IdentityPath())
	}
	c.stage = stage
	return nil
}

// Factory creates controllers. One factory is shared by every build of a
// tree; it remembers the controllers it handed out so the tree can finish
// them on close.
type Factory struct {
	controllers []*Controller
	mu          sync.Mutex
}

var _ domain.LifecycleControllerFactory = (*Factory)(nil)

// NewFactory creates a factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewController creates the model of owner in scope, backed by a fresh task graph.
func (f *Factory) NewController(owner domain.BuildState, def domain.BuildDefinition, scope *domain.ClassLoaderScope) domain.LifecycleController {
	c := &Controller{
		build: domain.NewBuild(owner, def, scope, taskgraph.New()),
		stage: domain.StageCreated,
	}
	f.mu.Lock()
	f.controllers = append(f.controllers, c)
	f.mu.Unlock()
	return c
}

// FinishAll moves every unfinished controller to the finished stage.
func (f *Factory) FinishAll() {
	f.mu.Lock()
	controllers := append([]*Controller(nil), f.controllers...)
	f.mu.Unlock()
	for _, c := range controllers {
		if c.Stage() != domain.StageFinished {
			_ = c.TransitionTo(domain.StageFinished)
		}
	}
}

// Controllers returns the controllers in creation order.
func (f *Factory) Controllers() []*Controller {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Controller(nil), f.controllers...)
}
