package taskstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/forPelevin/subcue/internal/taskstore"
	"github.com/forPelevin/subcue/internal/types"
)

func openStore(t *testing.T) *taskstore.Store {
	t.Helper()
	store, err := taskstore.Open(filepath.Join(t.TempDir(), "db", "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateGetLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	task, err := store.Create(ctx, "talk.json", []string{"srt", "vtt"})
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	assert.Equal(t, taskstore.StatusPending, task.Status)

	require.NoError(t, store.SetStatus(ctx, task.ID, taskstore.StatusProcessing, ""))
	require.NoError(t, store.Complete(ctx, task.ID, 12, []string{"/out/talk.srt", "/out/talk, final.vtt"}))

	got, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, taskstore.StatusCompleted, got.Status)
	assert.Equal(t, 12, got.CueCount)
	assert.Equal(t, []string{"srt", "vtt"}, got.Formats)
	assert.Equal(t, []string{"/out/talk.srt", "/out/talk, final.vtt"}, got.Outputs)
	assert.Empty(t, got.Message)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := openStore(t)
	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetStatusErrors(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	err := store.SetStatus(ctx, "missing", taskstore.StatusFailed, "boom")
	assert.True(t, errors.Is(err, taskstore.ErrNotFound), "got %v", err)

	task, err := store.Create(ctx, "a.json", nil)
	require.NoError(t, err)
	assert.Error(t, store.SetStatus(ctx, task.ID, taskstore.Status("exploded"), ""))

	_, err = store.Create(ctx, "  ", nil)
	assert.Error(t, err)
}

func TestListFiltersAndLimits(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		task, err := store.Create(ctx, fmt.Sprintf("clip-%d.json", i), []string{"srt"})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	require.NoError(t, store.SetStatus(ctx, ids[1], taskstore.StatusFailed, "no speech detected"))
	require.NoError(t, store.SetStatus(ctx, ids[3], taskstore.StatusCancelled, ""))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID, "newest first")

	failed, err := store.List(ctx, 0, taskstore.StatusFailed, taskstore.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, failed, 2)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	got, err := store.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "no speech detected", got.Message)
}

func TestReopenKeepsTasksAndChecksVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	store, err := taskstore.Open(path)
	require.NoError(t, err)
	task, err := store.Create(context.Background(), "x.json", nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = taskstore.Open(path)
	require.NoError(t, err)
	got, err := store.Get(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE schema_version SET version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = taskstore.Open(path)
	assert.ErrorIs(t, err, taskstore.ErrSchemaMismatch)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want taskstore.Status
	}{
		{nil, taskstore.StatusCompleted},
		{fmt.Errorf("run: %w", context.Canceled), taskstore.StatusCancelled},
		{context.DeadlineExceeded, taskstore.StatusCancelled},
		{fmt.Errorf("normalize: %w", types.ErrEmptyTranscript), taskstore.StatusFailed},
		{types.ErrInvalidTranscript, taskstore.StatusFailed},
		{errors.New("disk full"), taskstore.StatusFailed},
	}
	for _, tt := range tests {
		if got := taskstore.StatusForError(tt.err); got != tt.want {
			t.Fatalf("StatusForError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, err := taskstore.ParseStatus(" Failed ")
	require.NoError(t, err)
	assert.Equal(t, taskstore.StatusFailed, s)
	assert.True(t, s.Terminal())
	assert.False(t, taskstore.StatusProcessing.Terminal())

	_, err = taskstore.ParseStatus("done")
	assert.Error(t, err)
}

func TestBeginFinish(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task, err := store.Begin(ctx, "api", []string{"vtt"})
	require.NoError(t, err)
	assert.Equal(t, taskstore.StatusProcessing, task.Status)

	runErr := fmt.Errorf("before segment: %w", context.Canceled)
	require.NoError(t, store.Finish(ctx, task.ID, 0, nil, runErr))
	got, err := store.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, taskstore.StatusCancelled, got.Status)
	assert.Contains(t, got.Message, "context canceled")

	other, err := store.Begin(context.Background(), "talk.json", []string{"srt"})
	require.NoError(t, err)
	require.NoError(t, store.Finish(context.Background(), other.ID, 3, []string{"talk.srt"}, nil))
	got, err = store.Get(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, taskstore.StatusCompleted, got.Status)
	assert.Equal(t, []string{"talk.srt"}, got.Outputs)
}
