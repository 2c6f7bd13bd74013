package cachehost

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/runoshun/confcache/internal/domain"
)

// Replay runs the commands of entry against a new session of host. Nested
// entries of included builds are replayed concurrently once the owner's
// projects are registered, each through a host bound to the included build.
// Any failure, including ctx cancellation, abandons the session.
func Replay(ctx context.Context, host *Host, entry *domain.CacheEntry) (*Build, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, err := host.CreateBuild(entry.RootProjectName)
	if err != nil {
		return nil, err
	}

	abandon := func(err error) (*Build, error) {
		session.Abandon(err)
		return session, err
	}

	for _, p := range entry.Projects {
		if err := ctx.Err(); err != nil {
			return abandon(err)
		}
		if err := session.CreateProject(p.Path, p.Dir, p.BuildDir); err != nil {
			return session, err
		}
	}

	if err := ctx.Err(); err != nil {
		return abandon(err)
	}
	if err := session.RegisterProjects(); err != nil {
		return session, err
	}

	for _, p := range entry.Projects {
		if len(p.Repositories) == 0 {
			continue
		}
		model, err := session.Project(p.Path)
		if err != nil {
			return session, err
		}
		model.SetRepositories(p.Repositories)
	}

	included := make([]domain.IncludedBuildState, len(entry.IncludedBuilds))
	for i, inc := range entry.IncludedBuilds {
		if err := ctx.Err(); err != nil {
			return abandon(err)
		}
		state, err := session.AddIncludedBuild(inc.Definition)
		if err != nil {
			return session, err
		}
		included[i] = state
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, inc := range entry.IncludedBuilds {
		if inc.Entry == nil {
			continue
		}
		nested := NewHost(included[i], host.svc)
		nestedEntry := inc.Entry
		g.Go(func() error {
			if _, err := Replay(gctx, nested, nestedEntry); err != nil {
				return fmt.Errorf("included build %s: %w", nested.BuildState().IdentityPath(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return abandon(err)
	}

	if err := ctx.Err(); err != nil {
		return abandon(err)
	}
	nodes, err := domain.LinkWorkNodes(entry.Work)
	if err != nil {
		return abandon(err)
	}
	if err := session.ScheduleNodes(nodes); err != nil {
		return session, err
	}
	return session, nil
}
