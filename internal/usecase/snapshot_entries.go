package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/confcache/internal/domain"
)

// SnapshotEntriesInput contains the parameters for recording a snapshot.
type SnapshotEntriesInput struct {
	Name string // Snapshot name (optional, defaults to a timestamp)
}

// SnapshotEntriesOutput contains the recorded snapshot.
type SnapshotEntriesOutput struct {
	Name    string
	Entries int
}

// SnapshotEntries is the use case for recording every entry under a name.
type SnapshotEntries struct {
	store domain.EntryStore
	clock domain.Clock
}

// NewSnapshotEntries creates a new SnapshotEntries use case.
func NewSnapshotEntries(store domain.EntryStore, clock domain.Clock) *SnapshotEntries {
	return &SnapshotEntries{store: store, clock: clock}
}

// Execute records the snapshot.
func (uc *SnapshotEntries) Execute(_ context.Context, in SnapshotEntriesInput) (*SnapshotEntriesOutput, error) {
	snap, err := snapshotter(uc.store)
	if err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = uc.clock.Now().UTC().Format("20060102-150405")
	}
	if err := domain.ValidateEntryKey(name); err != nil {
		return nil, err
	}

	entries, err := uc.store.List()
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if err := snap.Snapshot(name); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return &SnapshotEntriesOutput{Name: name, Entries: len(entries)}, nil
}

// RestoreSnapshotInput contains the parameters for restoring a snapshot.
type RestoreSnapshotInput struct {
	Name string // Snapshot name (required)
}

// RestoreSnapshot is the use case for replacing every entry with a snapshot.
type RestoreSnapshot struct {
	store  domain.EntryStore
	logger domain.Logger
}

// NewRestoreSnapshot creates a new RestoreSnapshot use case.
func NewRestoreSnapshot(store domain.EntryStore, logger domain.Logger) *RestoreSnapshot {
	return &RestoreSnapshot{store: store, logger: logger}
}

// Execute restores the snapshot.
func (uc *RestoreSnapshot) Execute(_ context.Context, in RestoreSnapshotInput) error {
	snap, err := snapshotter(uc.store)
	if err != nil {
		return err
	}
	if err := snap.RestoreSnapshot(in.Name); err != nil {
		return fmt.Errorf("restore snapshot %s: %w", in.Name, err)
	}
	uc.logger.Info("", "entry", "snapshot restored: "+in.Name)
	return nil
}

// ListSnapshotsOutput contains the snapshot names.
type ListSnapshotsOutput struct {
	Names []string
}

// ListSnapshots is the use case for listing snapshots.
type ListSnapshots struct {
	store domain.EntryStore
}

// NewListSnapshots creates a new ListSnapshots use case.
func NewListSnapshots(store domain.EntryStore) *ListSnapshots {
	return &ListSnapshots{store: store}
}

// Execute lists the snapshots.
func (uc *ListSnapshots) Execute(_ context.Context) (*ListSnapshotsOutput, error) {
	snap, err := snapshotter(uc.store)
	if err != nil {
		return nil, err
	}
	names, err := snap.ListSnapshots()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return &ListSnapshotsOutput{Names: names}, nil
}

func snapshotter(store domain.EntryStore) (domain.EntrySnapshotter, error) {
	snap, ok := store.(domain.EntrySnapshotter)
	if !ok {
		return nil, fmt.Errorf("%w (set [cache] store = %q)", domain.ErrSnapshotsUnsupported, domain.StoreGit)
	}
	return snap, nil
}
