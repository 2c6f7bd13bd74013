package buildtree

import (
	"context"

	"github.com/runoshun/confcache/internal/cachehost"
	"github.com/runoshun/confcache/internal/domain"
)

// Rehydrator rebuilds each entry in a tree of its own.
type Rehydrator struct {
	opts Options
}

var (
	_ domain.Rehydrator         = (*Rehydrator)(nil)
	_ domain.RepositoryResolver = (*Rehydrator)(nil)
)

// NewRehydrator creates a rehydrator. opts.Definition and opts.ID are taken
// from each entry.
func NewRehydrator(opts Options) *Rehydrator {
	return &Rehydrator{opts: opts}
}

// Rehydrate replays entry and snapshots the result before the tree closes.
func (r *Rehydrator) Rehydrate(ctx context.Context, entry *domain.CacheEntry) (*domain.BuildSummary, error) {
	opts := r.opts
	opts.Definition = entry.Definition
	opts.ID = entry.Key

	tree, err := New(opts)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if _, err := cachehost.Replay(ctx, tree.Host(), entry); err != nil {
		return nil, err
	}

	summary := cachehost.Summarize(tree.Root(), tree, tree.Builds())
	summary.PortalOverridden = tree.PortalOverridden()
	return summary, nil
}

// ResolveRepositories opens an empty tree, resolves urls through it and
// closes it again, so the portal override is only held while resolving.
func (r *Rehydrator) ResolveRepositories(urls []string) ([]string, bool, error) {
	opts := r.opts
	if opts.Definition.Name == "" {
		opts.Definition = domain.BuildDefinition{Name: "resolve"}
	}

	tree, err := New(opts)
	if err != nil {
		return nil, false, err
	}
	defer tree.Close()

	resolved := make([]string, len(urls))
	for i, url := range urls {
		resolved[i] = tree.ResolveRepository(url)
	}
	return resolved, tree.PortalOverridden(), nil
}
