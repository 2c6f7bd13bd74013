package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// ShowEntryInput contains the parameters for showing an entry.
type ShowEntryInput struct {
	Key string // Entry key (required)
	Raw bool   // Also render the entry document
}

// ShowEntryOutput contains the entry details.
type ShowEntryOutput struct {
	Entry    *domain.CacheEntry
	Document []byte // Set when Raw was requested
	Summary  domain.EntrySummary
}

// ShowEntry is the use case for displaying a stored entry.
type ShowEntry struct {
	store domain.EntryStore
	codec domain.EntryCodec
}

// NewShowEntry creates a new ShowEntry use case.
func NewShowEntry(store domain.EntryStore, codec domain.EntryCodec) *ShowEntry {
	return &ShowEntry{store: store, codec: codec}
}

// Execute retrieves the entry.
func (uc *ShowEntry) Execute(_ context.Context, in ShowEntryInput) (*ShowEntryOutput, error) {
	entry, err := uc.store.Get(in.Key)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	out := &ShowEntryOutput{Entry: entry, Summary: entry.Summarize()}
	if in.Raw {
		out.Document, err = uc.codec.Encode(entry)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
