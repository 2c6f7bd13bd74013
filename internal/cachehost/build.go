package cachehost

import (
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/buildstate"
)

// SettingsScopeName names the scope of the synthetic settings.
const SettingsScopeName = "settings"

// Build is one rehydration session. Its commands must be replayed in order:
// CreateProject*, RegisterProjects, AddIncludedBuild*, ScheduleNodes.
// The first failing command discards the session; every later command
// returns ErrSessionDiscarded wrapping that failure.
//
// A session is driven from a single goroutine. Tree-wide registries are only
// touched while holding the tree's worker lease.
// Fields are ordered to minimize memory padding.
type Build struct {
	state     domain.BuildState
	model     *domain.Build
	settings  *domain.Settings
	logger    domain.Logger
	failure   error
	buildDirs map[domain.Path]string
	phase     domain.SessionState
	svc       Services
}

var _ domain.IncludedBuildFactory = (*Build)(nil)

// createSettings synthesizes settings backed by an empty script. Project
// scopes of the build derive from core: plugin classes are not reloaded.
func (b *Build) createSettings(rootProjectName string) error {
	baseScope := b.model.ClassLoaderScope()
	settings := domain.NewSettings(
		b.model.RootDir(),
		rootProjectName,
		domain.EmptyScriptSource(domain.SettingsScriptName),
		baseScope.CreateChild(SettingsScopeName),
		baseScope,
		b.model.StartParameter(),
	)
	if err := b.model.SetSettings(settings); err != nil {
		return fmt.Errorf("create settings for %s: %w", b.state.IdentityPath(), err)
	}
	b.model.SetBaseProjectClassLoaderScope(b.svc.Scopes.CoreScope())
	b.settings = settings
	b.phase = domain.SessionInitialized
	b.debug("settings created, root project " + rootProjectName)
	return nil
}

// State returns the session state.
func (b *Build) State() domain.SessionState {
	return b.phase
}

// BuildState returns the build the session rehydrates.
func (b *Build) BuildState() domain.BuildState {
	return b.state
}

// Model returns the mutable build model.
func (b *Build) Model() *domain.Build {
	return b.model
}

// Settings returns the synthetic settings.
func (b *Build) Settings() *domain.Settings {
	return b.settings
}

// Err returns the failure that discarded the session, if any.
func (b *Build) Err() error {
	return b.failure
}

// Abandon discards the session with cause. Later commands fail.
func (b *Build) Abandon(cause error) {
	if b.failure == nil && cause != nil {
		b.failure = cause
		b.logger.Warn(b.state.IdentityPath().String(), "rehydrate", "session discarded: "+cause.Error())
	}
}

// CreateProject adds the descriptor at path and records its build directory.
// The parent descriptor must exist. The model is created by RegisterProjects.
func (b *Build) CreateProject(path, dir, buildDir string) error {
	if err := b.check(domain.SessionProjectsCreated); err != nil {
		return err
	}
	p, err := domain.ParsePath(path)
	if err != nil {
		return b.fail(err)
	}
	if _, err := b.settings.Descriptors().Add(p, dir); err != nil {
		return b.fail(fmt.Errorf("create project: %w", err))
	}
	if buildDir != "" {
		b.buildDirs[p] = buildDir
	}
	b.phase = domain.SessionProjectsCreated
	b.debug("project created " + p.String())
	return nil
}

// RegisterProjects registers the descriptor tree with the project registry
// and materializes one model per descriptor, parents first. Recorded build
// directories are applied before a model is published. The root model
// becomes both the root and the default project.
func (b *Build) RegisterProjects() error {
	if err := b.check(domain.SessionProjectsRegistered); err != nil {
		return err
	}

	descriptors := b.settings.Descriptors()
	// Both the model scope and the script base scope are core+plugins. No
	// per-project child scope is created.
	scope := b.svc.Scopes.CoreAndPluginsScope()

	err := b.svc.Leases.CurrentWorkerLease().WithLease(func() error {
		if err := b.svc.Projects.RegisterProjects(b.state, descriptors); err != nil {
			return err
		}
		return descriptors.Walk(func(d *domain.ProjectDescriptor) error {
			st, err := b.svc.Projects.StateFor(b.state.BuildIdentifier(), d.Path())
			if err != nil {
				return err
			}
			return st.CreateMutableModel(scope, scope, func(p *domain.Project) {
				if dir, ok := b.buildDirs[d.Path()]; ok {
					p.SetBuildDir(dir)
				}
			})
		})
	})
	if err != nil {
		return b.fail(fmt.Errorf("register projects: %w", err))
	}

	root, err := b.project(domain.RootPath)
	if err != nil {
		return b.fail(err)
	}
	b.model.SetRootProject(root)
	b.model.SetDefaultProject(root)
	if err := b.state.Lifecycle().TransitionTo(domain.StageConfigured); err != nil {
		return b.fail(err)
	}
	b.phase = domain.SessionProjectsRegistered
	b.debug(fmt.Sprintf("registered %d projects", descriptors.Len()))
	return nil
}

// Project returns the registered model at path. An unknown path means the
// entry is corrupt and discards the session.
func (b *Build) Project(path string) (*domain.Project, error) {
	if err := b.guard(); err != nil {
		return nil, err
	}
	p, err := domain.ParsePath(path)
	if err != nil {
		return nil, b.fail(err)
	}
	if b.phase != domain.SessionProjectsRegistered && b.phase != domain.SessionWorkScheduled {
		return nil, b.fail(fmt.Errorf("%w: %s (projects not registered)", domain.ErrProjectNotFound, p))
	}
	model, err := b.project(p)
	if err != nil {
		return nil, b.fail(err)
	}
	return model, nil
}

func (b *Build) project(p domain.Path) (*domain.Project, error) {
	st, err := b.state.Project(p)
	if err != nil {
		return nil, err
	}
	return st.MutableModel()
}

// ScheduleNodes adds already-linked nodes to the task graph and populates
// it. It may be called once per session.
func (b *Build) ScheduleNodes(nodes []domain.Node) error {
	if err := b.guard(); err != nil {
		return err
	}
	if b.phase == domain.SessionWorkScheduled {
		return b.fail(fmt.Errorf("%w: %s", domain.ErrAlreadyScheduled, b.state.IdentityPath()))
	}
	if err := b.check(domain.SessionWorkScheduled); err != nil {
		return err
	}

	graph := b.model.TaskGraph()
	if err := graph.AddNodes(nodes); err != nil {
		return b.fail(fmt.Errorf("schedule nodes: %w", err))
	}
	if err := graph.Populate(); err != nil {
		return b.fail(fmt.Errorf("populate task graph: %w", err))
	}
	if err := b.state.Lifecycle().TransitionTo(domain.StageScheduled); err != nil {
		return b.fail(err)
	}
	b.phase = domain.SessionWorkScheduled
	b.debug(fmt.Sprintf("scheduled %d nodes", len(nodes)))
	return nil
}

// AddIncludedBuild registers a build included by this one, with this session
// acting as the included-build factory.
func (b *Build) AddIncludedBuild(def domain.BuildDefinition) (domain.IncludedBuildState, error) {
	if err := b.guard(); err != nil {
		return nil, err
	}
	if b.phase != domain.SessionProjectsRegistered {
		return nil, b.fail(fmt.Errorf("%w: add included build %q in state %s", domain.ErrInvalidTransition, def.Name, b.phase))
	}

	var included domain.IncludedBuildState
	err := b.svc.Leases.CurrentWorkerLease().WithLease(func() error {
		var err error
		included, err = b.svc.Builds.AddIncludedBuildOf(b, b.state, def)
		return err
	})
	if err != nil {
		return nil, b.fail(fmt.Errorf("add included build: %w", err))
	}
	b.debug("included build " + included.IdentityPath().String())
	return included, nil
}

// CreateBuild constructs an included build sharing this tree's lease,
// lifecycle factory and project registry. It gets its own scope root.
func (b *Build) CreateBuild(
	id domain.BuildIdentifier,
	identityPath domain.Path,
	def domain.BuildDefinition,
	implicit bool,
	owner domain.BuildState,
) (domain.IncludedBuildState, error) {
	return buildstate.NewIncludedBuild(buildstate.IncludedBuildParams{
		Owner:        owner,
		Tree:         b.svc.Tree,
		Lease:        b.svc.Leases.CurrentWorkerLease(),
		Lifecycle:    b.svc.Lifecycle,
		Projects:     b.svc.Projects,
		ID:           id,
		IdentityPath: identityPath,
		Definition:   def,
		Implicit:     implicit,
	}), nil
}

// PrepareBuild does nothing: the included build is rehydrated from its own
// entry instead of running its scripts.
func (b *Build) PrepareBuild(domain.IncludedBuildState) error {
	return nil
}

func (b *Build) guard() error {
	if b.failure != nil {
		return fmt.Errorf("%w: %w", domain.ErrSessionDiscarded, b.failure)
	}
	return nil
}

func (b *Build) check(target domain.SessionState) error {
	if err := b.guard(); err != nil {
		return err
	}
	if !b.phase.CanTransitionTo(target) {
		return b.fail(fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, b.phase, target))
	}
	return nil
}

func (b *Build) fail(err error) error {
	b.Abandon(err)
	return err
}

func (b *Build) debug(msg string) {
	b.logger.Debug(b.state.IdentityPath().String(), "rehydrate", msg)
}
