package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecheck/internal/domain/models"
)

func newTestHistoryDB(t *testing.T) *HistoryDB {
	t.Helper()
	db, err := NewHistoryDB(filepath.Join(t.TempDir(), "history.db"), DBConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(id string, started time.Time) models.RunSummary {
	finished := started.Add(90 * time.Second)
	return models.RunSummary{
		ID:         id,
		Username:   "operator",
		InputFile:  "input.xlsx",
		State:      models.RunStateCompleted,
		Progress:   100,
		StartedAt:  started,
		FinishedAt: &finished,
		Total:      2,
		Succeeded:  1,
		Failed:     1,
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	db := newTestHistoryDB(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	table := &models.Table{
		Columns: []string{"Бренд", "Артикул"},
		Rows:    [][]string{{"Bosch", "123"}, {"Mann", "Данные отсутствуют"}},
	}
	errorRows := []models.ErrorRow{{Manufacturer: "Bosch", Article: "456"}}

	require.NoError(t, db.SaveRun(ctx, sampleRun("run-1", started), table, errorRows))

	run, err := db.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStateCompleted, run.State)
	assert.True(t, run.StartedAt.Equal(started))
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 90*time.Second, run.Duration(time.Now()))

	loaded, err := db.LoadResultTable(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, table, loaded)

	loadedErrors, err := db.LoadErrorRows(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, errorRows, loadedErrors)
}

func TestSaveRunReplacesRows(t *testing.T) {
	db := newTestHistoryDB(t)
	ctx := context.Background()
	run := sampleRun("run-1", time.Now())

	require.NoError(t, db.SaveRun(ctx, run, &models.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}, nil))
	require.NoError(t, db.SaveRun(ctx, run, &models.Table{Columns: []string{"a"}, Rows: [][]string{{"3"}}}, nil))

	loaded, err := db.LoadResultTable(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"3"}}, loaded.Rows)
}

func TestListRuns(t *testing.T) {
	db := newTestHistoryDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		if id == "c" {
			run.Username = "other"
		}
		require.NoError(t, db.SaveRun(ctx, run, nil, nil))
	}

	runs, err := db.ListRuns(ctx, "operator", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "a", runs[1].ID)

	all, err := db.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunNotFound(t *testing.T) {
	db := newTestHistoryDB(t)
	ctx := context.Background()

	_, err := db.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = db.LoadResultTable(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = db.LoadErrorRows(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, db.UpdateResultPath(ctx, "missing", "/tmp/x.xlsx"), ErrRunNotFound)
	assert.ErrorIs(t, db.DeleteRun(ctx, "missing"), ErrRunNotFound)
}

func TestDeleteRunCascades(t *testing.T) {
	db := newTestHistoryDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveRun(ctx, sampleRun("run-1", time.Now()),
		&models.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}},
		[]models.ErrorRow{{Manufacturer: "x", Article: "y"}}))
	require.NoError(t, db.UpdateResultPath(ctx, "run-1", "/tmp/result.xlsx"))

	run, err := db.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/result.xlsx", run.ResultPath)

	require.NoError(t, db.DeleteRun(ctx, "run-1"))

	var count int
	require.NoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM run_rows`).Scan(&count))
	assert.Zero(t, count)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := NewHistoryDB(path, DBConfig{})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewHistoryDB(path, DBConfig{})
	require.NoError(t, err)
	defer db.Close()

	applied, err := isMigrationApplied(db.conn, "runs_state_index")
	require.NoError(t, err)
	assert.True(t, applied)
}
