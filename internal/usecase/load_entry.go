// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// LoadEntryInput contains the parameters for loading a cache entry.
type LoadEntryInput struct {
	Key string // Entry key (required)
}

// LoadEntryOutput contains the result of loading a cache entry.
// Fields are ordered to minimize memory padding.
type LoadEntryOutput struct {
	Summary   *domain.BuildSummary // Rehydrated build, nil when the entry was rejected
	Reason    error                // Why the entry was rejected
	Key       string
	Rejected  bool // Rehydration failed; the caller must run a full configuration
	Discarded bool // The rejected entry was deleted from the store
}

// LoadEntry is the use case for rehydrating a build from a stored entry.
type LoadEntry struct {
	store        domain.EntryStore
	rehydrator   domain.Rehydrator
	configLoader domain.ConfigLoader
	logger       domain.Logger
}

// NewLoadEntry creates a new LoadEntry use case.
func NewLoadEntry(
	store domain.EntryStore,
	rehydrator domain.Rehydrator,
	configLoader domain.ConfigLoader,
	logger domain.Logger,
) *LoadEntry {
	return &LoadEntry{
		store:        store,
		rehydrator:   rehydrator,
		configLoader: configLoader,
		logger:       logger,
	}
}

// Execute rehydrates the entry. A rehydration failure is not returned as an
// error: the entry is rejected, deleted unless cache.keep_invalid is set,
// and the cause is reported in the output. Other errors, including context
// cancellation, leave the entry in place.
func (uc *LoadEntry) Execute(ctx context.Context, in LoadEntryInput) (*LoadEntryOutput, error) {
	cfg, err := uc.configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	entry, err := uc.store.Get(in.Key)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	summary, err := uc.rehydrator.Rehydrate(ctx, entry)
	if err == nil {
		uc.logger.Info(":", "load", fmt.Sprintf("entry %s rehydrated: %d projects, %d scheduled",
			in.Key, summary.CountProjects(), len(summary.ScheduledWork)))
		return &LoadEntryOutput{Key: in.Key, Summary: summary}, nil
	}
	if !domain.IsRehydrationFailure(err) {
		return nil, fmt.Errorf("rehydrate %s: %w", in.Key, err)
	}

	out := &LoadEntryOutput{Key: in.Key, Rejected: true, Reason: err}
	if cfg.Cache.KeepInvalid {
		uc.logger.Warn(":", "load", fmt.Sprintf("entry %s rejected, kept: %v", in.Key, err))
		return out, nil
	}
	if delErr := uc.store.Delete(in.Key); delErr != nil {
		return nil, fmt.Errorf("discard entry %s: %w", in.Key, delErr)
	}
	out.Discarded = true
	uc.logger.Warn(":", "load", fmt.Sprintf("entry %s discarded: %v", in.Key, err))
	return out, nil
}
