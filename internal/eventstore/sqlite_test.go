package eventstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/deckforge/internal/pipeline"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_ReplayPreservesEmissionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sequence := []pipeline.Event{
		{Type: pipeline.EventStarted, RunID: "r1", Timestamp: time.Now(), Message: "generation started"},
		{Type: pipeline.EventProgress, RunID: "r1", Timestamp: time.Now(), Stage: "searchResources", Status: "done"},
		{Type: pipeline.EventProgress, RunID: "r1", Timestamp: time.Now(), Stage: "generateThemeStyle", Status: "done"},
		{Type: pipeline.EventCompleted, RunID: "r1", Timestamp: time.Now(), Filename: "deck.json"},
	}
	for _, ev := range sequence {
		require.NoError(t, store.Append(ctx, ev))
	}

	got, err := store.ByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, len(sequence))
	for i, ev := range got {
		require.Equal(t, sequence[i].Type, ev.Type)
		require.Equal(t, sequence[i].Stage, ev.Stage)
	}
	require.Equal(t, "deck.json", got[3].Filename)
}

func TestSQLiteStore_RunsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"}))
	require.NoError(t, store.Append(ctx, pipeline.Event{Type: pipeline.EventStarted, RunID: "r2"}))

	got, err := store.ByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "r1", got[0].RunID)
}

func TestSQLiteStore_UnknownRunYieldsNoEvents(t *testing.T) {
	store := newTestStore(t)
	got, err := store.ByRunID(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), pipeline.Event{Type: pipeline.EventStarted, RunID: "r1"}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.ByRunID(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}
