package cachehost

import (
	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/infra/taskgraph"
)

// Summarize snapshots build and the builds it includes, directly or not.
// Repository URLs are reported as tree resolves them.
func Summarize(build domain.BuildState, tree domain.BuildTreeState, builds domain.BuildStateRegistry) *domain.BuildSummary {
	model := build.Mutable()
	s := &domain.BuildSummary{
		IdentityPath:  build.IdentityPath().String(),
		ScopeAncestry: model.ClassLoaderScope().Ancestry(),
		ScheduledWork: taskgraph.NodeIDs(model.TaskGraph().ScheduledWorkPlusDependencies()),
		Stage:         build.Lifecycle().Stage(),
	}

	if root := model.RootProject(); root != nil {
		s.RootProject = root.Name()
		root.Walk(func(p *domain.Project) {
			s.Projects = append(s.Projects, summarizeProject(p, tree))
		})
	}

	for _, inc := range builds.IncludedBuilds() {
		if inc.Owner() != build {
			continue
		}
		s.IncludedBuilds = append(s.IncludedBuilds, *Summarize(inc, tree, builds))
	}
	return s
}

func summarizeProject(p *domain.Project, tree domain.BuildTreeState) domain.ProjectSummary {
	ps := domain.ProjectSummary{
		Path:         p.Path().String(),
		IdentityPath: p.IdentityPath().String(),
		Dir:          p.ProjectDir(),
		BuildDir:     p.BuildDir(),
		Depth:        p.Path().Depth(),
	}
	if scope := p.ClassLoaderScope(); scope != nil {
		ps.Scope = scope.ID()
	}
	for _, repo := range p.Repositories() {
		url := repo.URL
		if tree != nil {
			url = tree.ResolveRepository(url)
		}
		ps.Repositories = append(ps.Repositories, url)
	}
	return ps
}
