// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/buildtree"
	"github.com/runoshun/confcache/internal/infra/config"
	"github.com/runoshun/confcache/internal/infra/entryfile"
	"github.com/runoshun/confcache/internal/infra/git"
	"github.com/runoshun/confcache/internal/infra/gitstore"
	"github.com/runoshun/confcache/internal/infra/jsonstore"
	"github.com/runoshun/confcache/internal/infra/logging"
	"github.com/runoshun/confcache/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	RepoRoot  string // Build root (repository root when inside git)
	CacheDir  string // Path to <root>/.confcache
	StorePath string // Path to entries.json
	InGitRepo bool   // Whether RepoRoot is a git worktree
}

// newConfig resolves the build root of dir. Outside a repository, dir
// itself is the build root and only the json store is available.
func newConfig(dir string) (Config, error) {
	root := dir
	inGit := true
	client, err := git.NewClient(dir)
	switch {
	case err == nil:
		root = client.RepoRoot()
	case errors.Is(err, domain.ErrNotGitRepository):
		inGit = false
		if root, err = filepath.Abs(dir); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, err
	}

	cacheDir := domain.RepoCacheDir(root)
	return Config{
		RepoRoot:  root,
		CacheDir:  cacheDir,
		StorePath: filepath.Join(cacheDir, domain.EntriesFileName),
		InGitRepo: inGit,
	}, nil
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
// Fields are ordered to minimize memory padding.
type Container struct {
	// Ports (interfaces bound to implementations)
	Entries          domain.EntryStore
	StoreInitializer domain.StoreInitializer
	Clock            domain.Clock
	Codec            domain.EntryCodec
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager
	Rehydrator       domain.Rehydrator
	Resolver         domain.RepositoryResolver
	OpLog            domain.Logger

	// Pointer fields
	Logger    *slog.Logger
	AppConfig *domain.Config
	fileLog   *logging.Logger

	// Configuration
	Env    domain.Environment
	Config Config
}

// New creates a new Container for the build root containing dir.
func New(dir string) (*Container, error) {
	cfg, err := newConfig(dir)
	if err != nil {
		return nil, err
	}

	configLoader := config.NewLoader(cfg.RepoRoot, cfg.CacheDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	hostname, _ := os.Hostname()
	env := config.EnvironmentFrom(os.Getenv, hostname, runtime.GOOS)
	config.ApplyEnvironment(appConfig, env, os.Getenv)
	env.IgnoreMirror = env.IgnoreMirror || appConfig.Mirrors.Ignore

	level := logging.ParseLevel(appConfig.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	for _, w := range appConfig.Warnings {
		logger.Warn("config", "warning", w)
	}

	entries, storeInit, err := openStore(cfg, appConfig)
	if errors.Is(err, domain.ErrNotGitRepository) {
		logger.Warn("git store unavailable, using json store", "root", cfg.RepoRoot)
		appConfig.Cache.Store = domain.StoreJSON
		entries, storeInit, err = openStore(cfg, appConfig)
	}
	if err != nil {
		return nil, err
	}

	fileLog := logging.New(cfg.CacheDir, level)
	rehydrator := buildtree.NewRehydrator(buildtree.Options{
		Mirrors:           appConfig.Mirrors.URLs,
		Portal:            &domain.PortalOverride{},
		Logger:            fileLog,
		PortalOverrideURL: appConfig.Portal.OverrideURL,
		Env:               env,
	})

	return &Container{
		Entries:          entries,
		StoreInitializer: storeInit,
		Clock:            domain.RealClock{},
		Codec:            entryfile.Codec{},
		ConfigLoader:     configLoader,
		ConfigManager:    config.NewManager(cfg.RepoRoot, cfg.CacheDir),
		Rehydrator:       rehydrator,
		Resolver:         rehydrator,
		OpLog:            fileLog,
		Logger:           logger,
		AppConfig:        appConfig,
		fileLog:          fileLog,
		Env:              env,
		Config:           cfg,
	}, nil
}

// openStore selects the entry store from [cache] store.
func openStore(cfg Config, appConfig *domain.Config) (domain.EntryStore, domain.StoreInitializer, error) {
	if appConfig.Cache.Store != domain.StoreGit {
		store := jsonstore.New(cfg.StorePath)
		return store, store, nil
	}
	if !cfg.InGitRepo {
		return nil, nil, fmt.Errorf("git store: %w", domain.ErrNotGitRepository)
	}

	key := ""
	if appConfig.Cache.Encrypt {
		key = appConfig.Cache.Key
	}
	store, err := gitstore.NewWithEncryption(cfg.RepoRoot, appConfig.Cache.Namespace, key, cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, entries domain.EntryStore, rehydrator domain.Rehydrator, clock domain.Clock, logger *slog.Logger) *Container {
	c := &Container{
		Entries:      entries,
		Clock:        clock,
		Codec:        entryfile.Codec{},
		ConfigLoader: config.NewLoader(cfg.RepoRoot, cfg.CacheDir),
		Rehydrator:   rehydrator,
		OpLog:        domain.NopLogger{},
		Logger:       logger,
		AppConfig:    domain.NewDefaultConfig(),
		Config:       cfg,
	}
	if si, ok := entries.(domain.StoreInitializer); ok {
		c.StoreInitializer = si
	}
	if resolver, ok := rehydrator.(domain.RepositoryResolver); ok {
		c.Resolver = resolver
	}
	c.ConfigManager = config.NewManager(cfg.RepoRoot, cfg.CacheDir)
	return c
}

// Close releases the operational log files.
func (c *Container) Close() error {
	if c.fileLog == nil {
		return nil
	}
	return c.fileLog.Close()
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.StoreInitializer)
}

// ImportEntryUseCase returns a new ImportEntry use case.
func (c *Container) ImportEntryUseCase() *usecase.ImportEntry {
	return usecase.NewImportEntry(c.Entries, c.Codec, c.Clock, c.OpLog)
}

// ListEntriesUseCase returns a new ListEntries use case.
func (c *Container) ListEntriesUseCase() *usecase.ListEntries {
	return usecase.NewListEntries(c.Entries)
}

// ShowEntryUseCase returns a new ShowEntry use case.
func (c *Container) ShowEntryUseCase() *usecase.ShowEntry {
	return usecase.NewShowEntry(c.Entries, c.Codec)
}

// DeleteEntryUseCase returns a new DeleteEntry use case.
func (c *Container) DeleteEntryUseCase() *usecase.DeleteEntry {
	return usecase.NewDeleteEntry(c.Entries, c.OpLog)
}

// LoadEntryUseCase returns a new LoadEntry use case.
func (c *Container) LoadEntryUseCase() *usecase.LoadEntry {
	return usecase.NewLoadEntry(c.Entries, c.Rehydrator, c.ConfigLoader, c.OpLog)
}

// ResolveRepositoryUseCase returns a new ResolveRepository use case.
func (c *Container) ResolveRepositoryUseCase() *usecase.ResolveRepository {
	return usecase.NewResolveRepository(c.Resolver)
}

// SnapshotEntriesUseCase returns a new SnapshotEntries use case.
func (c *Container) SnapshotEntriesUseCase() *usecase.SnapshotEntries {
	return usecase.NewSnapshotEntries(c.Entries, c.Clock)
}

// RestoreSnapshotUseCase returns a new RestoreSnapshot use case.
func (c *Container) RestoreSnapshotUseCase() *usecase.RestoreSnapshot {
	return usecase.NewRestoreSnapshot(c.Entries, c.OpLog)
}

// ListSnapshotsUseCase returns a new ListSnapshots use case.
func (c *Container) ListSnapshotsUseCase() *usecase.ListSnapshots {
	return usecase.NewListSnapshots(c.Entries)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}
