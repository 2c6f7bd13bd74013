package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// ListEntriesInput contains the parameters for listing entries.
type ListEntriesInput struct{}

// ListEntriesOutput contains the stored entries.
type ListEntriesOutput struct {
	Entries []domain.EntrySummary // Sorted by key
}

// ListEntries is the use case for listing stored entries.
type ListEntries struct {
	store domain.EntryStore
}

// NewListEntries creates a new ListEntries use case.
func NewListEntries(store domain.EntryStore) *ListEntries {
	return &ListEntries{store: store}
}

// Execute lists the entries.
func (uc *ListEntries) Execute(_ context.Context, _ ListEntriesInput) (*ListEntriesOutput, error) {
	entries, err := uc.store.List()
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return &ListEntriesOutput{Entries: entries}, nil
}
