package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// DeleteEntryInput contains the parameters for deleting an entry.
type DeleteEntryInput struct {
	Key string // Entry key (required)
}

// DeleteEntry is the use case for deleting a stored entry.
type DeleteEntry struct {
	store  domain.EntryStore
	logger domain.Logger
}

// NewDeleteEntry creates a new DeleteEntry use case.
func NewDeleteEntry(store domain.EntryStore, logger domain.Logger) *DeleteEntry {
	return &DeleteEntry{store: store, logger: logger}
}

// Execute deletes the entry. Unlike the store, it reports a missing entry.
func (uc *DeleteEntry) Execute(_ context.Context, in DeleteEntryInput) error {
	if _, err := uc.store.Get(in.Key); err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	if err := uc.store.Delete(in.Key); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	uc.logger.Info("", "entry", fmt.Sprintf("entry %s deleted", in.Key))
	return nil
}
