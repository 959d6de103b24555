package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/scriptdeps/internal/testutil"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func sampleDataset() *core.Dataset {
	ds := core.NewDataset()
	ds.Add(&core.ScriptRecord{Name: "LoadOrders", DA2Jobs: []string{"DA2_Nightly"}, OpsJobs: []string{"OPS_Orders"}, Calls: []string{"Validate", "Missing"}})
	ds.Add(&core.ScriptRecord{Name: "Validate", DA2Jobs: []string{}, OpsJobs: []string{}, Calls: []string{}})
	return ds
}

func TestStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"exports", "scripts", "script_jobs", "script_calls"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		_ = rows.Close()
	}
}

func TestStore_SaveExport(t *testing.T) {
	store := setupTestStore(t)
	store.now = func() time.Time { return time.Date(2024, 3, 11, 8, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	exp, err := store.SaveExport(ctx, sampleDataset(), "dump", "/data/sample.dat")
	require.NoError(t, err)
	assert.NotEmpty(t, exp.ID)
	assert.Equal(t, 2, exp.ScriptCount)
	assert.Equal(t, 2, exp.CallCount)

	var jobs int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM script_jobs WHERE export_id = ?`, exp.ID).Scan(&jobs))
	assert.Equal(t, 2, jobs)

	var callee string
	require.NoError(t, store.db.QueryRow(
		`SELECT callee FROM script_calls WHERE export_id = ? AND caller = ? AND position = 1`, exp.ID, "LoadOrders",
	).Scan(&callee))
	assert.Equal(t, "Missing", callee)

	exports, err := store.ListExports(ctx)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, *exp, exports[0])
}

func TestStore_ListExportsNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		store.now = func() time.Time { return at }
		exp, err := store.SaveExport(ctx, sampleDataset(), "dataset", "")
		require.NoError(t, err)
		ids = append(ids, exp.ID)
	}

	exports, err := store.ListExports(ctx)
	require.NoError(t, err)
	require.Len(t, exports, 3)
	assert.Equal(t, ids[2], exports[0].ID)
	assert.Equal(t, ids[0], exports[2].ID)
}

func TestStore_NotOpened(t *testing.T) {
	store := NewStore(nil)

	_, err := store.SaveExport(context.Background(), core.NewDataset(), "dump", "")
	assert.EqualError(t, err, "database not opened")
	_, err = store.ListExports(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Migrate())
	assert.NoError(t, store.Close())
}

func TestStore_SaveExportRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO exports").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO scripts").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := NewStoreWithDB(db, nil)
	ds := core.NewDataset()
	ds.Add(&core.ScriptRecord{Name: "A"})

	_, err = store.SaveExport(context.Background(), ds, "dump", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveExportCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO exports").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("locked"))

	store := NewStoreWithDB(db, nil)
	_, err = store.SaveExport(context.Background(), core.NewDataset(), "dump", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit export")
	assert.NoError(t, mock.ExpectationsWereMet())
}
