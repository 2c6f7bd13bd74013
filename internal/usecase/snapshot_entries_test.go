package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotEntries_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockEntryStore(storedEntry("a"), storedEntry("b"))
	clock := &testutil.MockClock{NowTime: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)}

	out, err := NewSnapshotEntries(store, clock).Execute(ctx, SnapshotEntriesInput{})
	require.NoError(t, err)
	assert.Equal(t, "20250304-050607", out.Name)
	assert.Equal(t, 2, out.Entries)

	require.NoError(t, store.Delete("a"))
	require.NoError(t, NewRestoreSnapshot(store, domain.NopLogger{}).Execute(ctx, RestoreSnapshotInput{Name: out.Name}))
	assert.Contains(t, store.Entries, "a")

	list, err := NewListSnapshots(store).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250304-050607"}, list.Names)
}

func TestSnapshotEntries_InvalidName(t *testing.T) {
	store := testutil.NewMockEntryStore()

	_, err := NewSnapshotEntries(store, domain.RealClock{}).Execute(context.Background(), SnapshotEntriesInput{Name: "../x"})

	assert.ErrorIs(t, err, domain.ErrInvalidEntryKey)
}

func TestSnapshotEntries_Unsupported(t *testing.T) {
	ctx := context.Background()
	store := &testutil.MockPlainStore{EntryStore: testutil.NewMockEntryStore()}

	_, err := NewSnapshotEntries(store, domain.RealClock{}).Execute(ctx, SnapshotEntriesInput{Name: "s"})
	assert.ErrorIs(t, err, domain.ErrSnapshotsUnsupported)

	err = NewRestoreSnapshot(store, domain.NopLogger{}).Execute(ctx, RestoreSnapshotInput{Name: "s"})
	assert.ErrorIs(t, err, domain.ErrSnapshotsUnsupported)

	_, err = NewListSnapshots(store).Execute(ctx)
	assert.ErrorIs(t, err, domain.ErrSnapshotsUnsupported)
}
