package buildtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
)

func compositeEntry() *domain.CacheEntry {
	return &domain.CacheEntry{
		Key:             "composite",
		RootProjectName: "app",
		Definition:      domain.BuildDefinition{Name: "app", RootDir: "/src"},
		Projects: []domain.ProjectEntry{
			{Path: ":", Dir: "/src", BuildDir: "/src/build"},
			{Path: ":core", Dir: "/src/core", BuildDir: "/out/core", Repositories: []domain.Repository{
				{Name: "central", URL: domain.KnownRepositories["mavencentral"]},
				{Name: "portal", URL: domain.KnownRepositories[domain.PluginPortalName]},
			}},
		},
		IncludedBuilds: []domain.IncludedBuildEntry{{
			Definition: domain.BuildDefinition{Name: "build-logic", RootDir: "/src/build-logic"},
			Entry: &domain.CacheEntry{
				RootProjectName: "build-logic",
				Projects:        []domain.ProjectEntry{{Path: ":plugins", Dir: "/src/build-logic/plugins"}},
				Work:            []domain.WorkEntry{{Project: ":plugins", Task: "jar"}},
			},
		}},
		Work: []domain.WorkEntry{
			{Project: ":", Task: "assemble", DependsOn: []string{":core:jar"}},
			{Project: ":core", Task: "jar"},
		},
	}
}

func TestRehydrator_Rehydrate(t *testing.T) {
	var portal domain.PortalOverride
	r := NewRehydrator(Options{
		Mirrors:           map[string]string{"mavencentral": "https://mirror.local/maven2/"},
		Portal:            &portal,
		PortalOverrideURL: "https://portal.local/m2/",
		Env:               ciAgent,
	})

	summary, err := r.Rehydrate(context.Background(), compositeEntry())
	require.NoError(t, err)

	assert.Equal(t, ":", summary.IdentityPath)
	assert.Equal(t, "app", summary.RootProject)
	assert.True(t, summary.PortalOverridden)
	assert.Equal(t, domain.StageScheduled, summary.Stage)
	assert.Equal(t, []string{":core:jar", ":assemble"}, summary.ScheduledWork)
	assert.Equal(t, 4, summary.CountProjects(), "the included build keeps its synthetic root")

	require.Len(t, summary.Projects, 2)
	core := summary.Projects[1]
	assert.Equal(t, ":core", core.Path)
	assert.Equal(t, "/out/core", core.BuildDir)
	assert.Equal(t, []string{"https://mirror.local/maven2/", "https://portal.local/m2/"}, core.Repositories)

	require.Len(t, summary.IncludedBuilds, 1)
	logic := summary.IncludedBuilds[0]
	assert.Equal(t, ":build-logic", logic.IdentityPath)
	assert.Equal(t, []string{":plugins:jar"}, logic.ScheduledWork)
	require.Len(t, logic.Projects, 2)
	assert.Equal(t, ":", logic.Projects[0].Path)
	assert.Equal(t, ":plugins", logic.Projects[1].Path)

	_, held := portal.URL()
	assert.False(t, held, "the tree releases the override when rehydration ends")
}

func TestRehydrator_EachEntryGetsItsOwnTree(t *testing.T) {
	r := NewRehydrator(Options{Env: linuxDev})

	_, err := r.Rehydrate(context.Background(), compositeEntry())
	require.NoError(t, err)
	_, err = r.Rehydrate(context.Background(), compositeEntry())
	require.NoError(t, err)
}

func TestRehydrator_Failure(t *testing.T) {
	entry := compositeEntry()
	entry.Work = append(entry.Work, domain.WorkEntry{Project: ":", Task: "check", DependsOn: []string{":missing"}})

	_, err := NewRehydrator(Options{}).Rehydrate(context.Background(), entry)

	require.Error(t, err)
	assert.True(t, domain.IsRehydrationFailure(err))
}

func TestRehydrator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRehydrator(Options{}).Rehydrate(ctx, compositeEntry())

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsRehydrationFailure(err))
}

func TestRehydrator_ResolveRepositories(t *testing.T) {
	var portal domain.PortalOverride
	r := NewRehydrator(Options{
		Mirrors:           map[string]string{"google": "https://mirror.local/google/"},
		Portal:            &portal,
		PortalOverrideURL: "https://portal.local/",
		Env:               ciAgent,
	})

	got, overridden, err := r.ResolveRepositories([]string{
		domain.KnownRepositories["google"],
		domain.KnownRepositories[domain.PluginPortalName],
		"https://other.local/",
	})
	require.NoError(t, err)

	assert.True(t, overridden)
	assert.Equal(t, []string{"https://mirror.local/google/", "https://portal.local/", "https://other.local/"}, got)
	_, held := portal.URL()
	assert.False(t, held)
}
