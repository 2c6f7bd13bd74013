package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// ImportEntryInput contains the parameters for importing an entry file.
type ImportEntryInput struct {
	Content []byte // YAML document
	Key     string // Overrides the key in the document (optional)
	Force   bool   // Replace an existing entry
}

// ImportEntryOutput contains the result of importing an entry.
type ImportEntryOutput struct {
	Summary  domain.EntrySummary
	Replaced bool
}

// ImportEntry is the use case for storing an entry read from a file.
type ImportEntry struct {
	store  domain.EntryStore
	codec  domain.EntryCodec
	clock  domain.Clock
	logger domain.Logger
}

// NewImportEntry creates a new ImportEntry use case.
func NewImportEntry(store domain.EntryStore, codec domain.EntryCodec, clock domain.Clock, logger domain.Logger) *ImportEntry {
	return &ImportEntry{
		store:  store,
		codec:  codec,
		clock:  clock,
		logger: logger,
	}
}

// Execute decodes, validates and stores the entry.
func (uc *ImportEntry) Execute(_ context.Context, in ImportEntryInput) (*ImportEntryOutput, error) {
	entry, err := uc.codec.Decode(in.Content)
	if err != nil {
		return nil, err
	}
	if in.Key != "" {
		entry.Key = in.Key
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	replaced := false
	_, err = uc.store.Get(entry.Key)
	switch {
	case err == nil:
		if !in.Force {
			return nil, fmt.Errorf("%w: %s", domain.ErrEntryExists, entry.Key)
		}
		replaced = true
	case !errors.Is(err, domain.ErrEntryNotFound):
		return nil, fmt.Errorf("get entry: %w", err)
	}

	if entry.Created.IsZero() {
		entry.Created = uc.clock.Now()
	}
	if err := uc.store.Save(entry); err != nil {
		return nil, fmt.Errorf("save entry: %w", err)
	}

	uc.logger.Info("", "entry", fmt.Sprintf("entry %s imported", entry.Key))
	return &ImportEntryOutput{Summary: entry.Summarize(), Replaced: replaced}, nil
}
