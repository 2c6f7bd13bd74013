package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// ResolveRepositoryInput contains the repositories to resolve. Each item is
// a known repository name or a URL. Empty means every known repository.
type ResolveRepositoryInput struct {
	Repositories []string
}

// ResolvedRepository is one resolution result.
type ResolvedRepository struct {
	Name      string // Known repository name, empty for plain URLs
	URL       string // Declared URL
	Effective string // URL after the portal override and mirror policy
	Rewritten bool
}

// ResolveRepositoryOutput contains the resolution results in input order.
type ResolveRepositoryOutput struct {
	Repositories     []ResolvedRepository
	PortalOverridden bool
}

// ResolveRepository is the use case for showing effective repository URLs.
type ResolveRepository struct {
	resolver domain.RepositoryResolver
}

// NewResolveRepository creates a new ResolveRepository use case.
func NewResolveRepository(resolver domain.RepositoryResolver) *ResolveRepository {
	return &ResolveRepository{resolver: resolver}
}

// Execute resolves the repositories.
func (uc *ResolveRepository) Execute(_ context.Context, in ResolveRepositoryInput) (*ResolveRepositoryOutput, error) {
	items := in.Repositories
	if len(items) == 0 {
		items = domain.KnownRepositoryNames()
	}

	rows := make([]ResolvedRepository, len(items))
	urls := make([]string, len(items))
	for i, item := range items {
		if url, ok := domain.KnownRepositories[item]; ok {
			rows[i] = ResolvedRepository{Name: item, URL: url}
		} else {
			rows[i] = ResolvedRepository{URL: item}
		}
		urls[i] = rows[i].URL
	}

	effective, overridden, err := uc.resolver.ResolveRepositories(urls)
	if err != nil {
		return nil, fmt.Errorf("resolve repositories: %w", err)
	}
	for i := range rows {
		rows[i].Effective = effective[i]
		rows[i].Rewritten = effective[i] != rows[i].URL
	}

	return &ResolveRepositoryOutput{Repositories: rows, PortalOverridden: overridden}, nil
}
