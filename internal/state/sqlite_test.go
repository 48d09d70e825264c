package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modguard/internal/testutil"
	"github.com/leapstack-labs/modguard/pkg/modgraph"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenCloseOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".modguard", "state.db")
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())
	assert.Equal(t, path, store.Path())

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "second close is a no-op")
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	_, err := store.GetFile(ctx, "a.ex")
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.SaveFile(ctx, &FileEntry{Path: "a.ex"}), errNotOpened)
	assert.ErrorIs(t, store.DeleteFile(ctx, "a.ex"), errNotOpened)
	_, err = store.ListFilePaths(ctx)
	assert.ErrorIs(t, err, errNotOpened)
	_, err = store.CreateRun(ctx)
	assert.ErrorIs(t, err, errNotOpened)
	_, err = store.ListRuns(ctx, 5)
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.Migrate(), errNotOpened)
}

func TestSQLiteStore_FileRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	missing, err := store.GetFile(ctx, "lib/a.ex")
	require.NoError(t, err)
	assert.Nil(t, missing)

	entry := &FileEntry{
		Path:        "lib/a.ex",
		ContentHash: "abc",
		Records: []modgraph.DependencyRecord{{
			Owner:        "MyApp.A",
			Dependencies: modgraph.NewSet("MyApp.B", "Ecto.Repo"),
			Activations:  modgraph.NewSet("Ecto.Repo"),
			FilePath:     "lib/a.ex",
		}},
	}
	require.NoError(t, store.SaveFile(ctx, entry))

	got, err := store.GetFile(ctx, "lib/a.ex")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.ContentHash)
	require.Len(t, got.Records, 1)
	assert.Equal(t, entry.Records[0], got.Records[0])
	assert.False(t, got.UpdatedAt.IsZero())

	// Upsert replaces the previous entry.
	entry.ContentHash = "def"
	entry.Records = nil
	require.NoError(t, store.SaveFile(ctx, entry))
	got, err = store.GetFile(ctx, "lib/a.ex")
	require.NoError(t, err)
	assert.Equal(t, "def", got.ContentHash)
	assert.Empty(t, got.Records)
}

func TestSQLiteStore_ListAndDeleteFiles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"lib/c.ex", "lib/a.ex", "lib/b.ex"} {
		require.NoError(t, store.SaveFile(ctx, &FileEntry{Path: p, ContentHash: "h"}))
	}

	paths, err := store.ListFilePaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/a.ex", "lib/b.ex", "lib/c.ex"}, paths)

	require.NoError(t, store.DeleteFile(ctx, "lib/b.ex"))
	require.NoError(t, store.DeleteFile(ctx, "lib/missing.ex"))
	require.NoError(t, store.DeleteFiles(ctx, []string{"lib/a.ex"}))
	require.NoError(t, store.DeleteFiles(ctx, nil))

	paths, err = store.ListFilePaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/c.ex"}, paths)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.CreateRun(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, RunStatusRunning, first.Status)
	assert.Zero(t, first.Duration())

	time.Sleep(5 * time.Millisecond)
	second, err := store.CreateRun(ctx)
	require.NoError(t, err)

	require.NoError(t, store.CompleteRun(ctx, first.ID, RunStatusCompleted, RunStats{FilesTotal: 10, Modules: 7}, ""))
	require.NoError(t, store.RecordViolations(ctx, first.ID, 3))
	require.NoError(t, store.CompleteRun(ctx, second.ID, RunStatusFailed, RunStats{}, "boom"))

	got, err := store.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Equal(t, 10, got.FilesTotal)
	assert.Equal(t, 7, got.Modules)
	assert.Equal(t, 3, got.Violations)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.Error)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID, "newest first")
	assert.Equal(t, "boom", runs[0].Error)

	assert.Error(t, store.CompleteRun(ctx, "nope", RunStatusCompleted, RunStats{}, ""))
	assert.Error(t, store.RecordViolations(ctx, "nope", 1))
	_, err = store.GetRun(ctx, "nope")
	assert.Error(t, err)
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db, testutil.NewTestLogger(t))
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectQuery("SELECT content_hash, records, updated_at FROM files").
		WithArgs("lib/a.ex").
		WillReturnError(boom)
	_, err = store.GetFile(ctx, "lib/a.ex")
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery("SELECT content_hash, records, updated_at FROM files").
		WithArgs("lib/bad.ex").
		WillReturnRows(sqlmock.NewRows([]string{"content_hash", "records", "updated_at"}).
			AddRow("h", "{not json", time.Now()))
	_, err = store.GetFile(ctx, "lib/bad.ex")
	assert.ErrorContains(t, err, "failed to decode records")

	mock.ExpectExec("INSERT INTO runs").WillReturnError(boom)
	_, err = store.CreateRun(ctx)
	assert.ErrorIs(t, err, boom)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM files").WithArgs("a.ex").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM files").WithArgs("b.ex").WillReturnError(boom)
	mock.ExpectRollback()
	assert.ErrorIs(t, store.DeleteFiles(ctx, []string{"a.ex", "b.ex"}), boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
