package services

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricecheck/database"
	"pricecheck/importer"
	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/pipeline"
	"pricecheck/internal/priceapi"
	apperrors "pricecheck/server/errors"
)

type stubClient struct {
	block chan struct{}
}

func (c *stubClient) Request(ctx context.Context, q priceapi.Query) *models.PriceResponse {
	if c.block != nil {
		select {
		case <-ctx.Done():
			return nil
		case <-c.block:
		}
	}
	if q.Article == "missing" {
		return nil
	}
	return &models.PriceResponse{
		MinInStock: "10",
		Offers:     []models.Offer{{Price: 10, Qty: 1, Store: "Shop", InStock: 1}},
	}
}

func (c *stubClient) KeyCount() int { return 1 }

type fixture struct {
	runs    *RunService
	configs *ConfigService
	history *database.HistoryDB
}

func newFixture(t *testing.T, client pipeline.APIClient) *fixture {
	t.Helper()
	root := t.TempDir()

	store, err := config.NewStore(filepath.Join(root, "configs"), "operator", nil)
	require.NoError(t, err)
	_, err = store.SaveApp(config.AppConfig{FastExport: false, TimeDelay: 0})
	require.NoError(t, err)

	history, err := database.NewHistoryDB(filepath.Join(root, "history.db"), database.DBConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	driver, err := pipeline.NewDriver(pipeline.Options{Store: store, Client: client, History: history})
	require.NoError(t, err)

	return &fixture{
		runs:    NewRunService(driver, history, "operator", filepath.Join(root, "uploads"), nil),
		configs: NewConfigService(store, nil),
		history: history,
	}
}

func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range append([][]interface{}{{"Производитель", "Артикул"}}, rows...) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func waitFinished(t *testing.T, s *RunService, id string) *models.RunSummary {
	t.Helper()
	var summary *models.RunSummary
	require.Eventually(t, func() bool {
		got, err := s.GetRun(context.Background(), id)
		if err != nil {
			return false
		}
		summary = got
		return got.State.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	return summary
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.StatusCode()
}

func operationOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Operation()
}

func TestStartRunAndFetchResults(t *testing.T) {
	fx := newFixture(t, &stubClient{})
	data := workbook(t, []interface{}{"Bosch", "123"}, []interface{}{"ACME", "missing"})

	summary, err := fx.runs.StartRun(context.Background(), "input.xlsx", bytes.NewReader(data), false)
	require.NoError(t, err)
	assert.Equal(t, "input.xlsx", summary.InputFile)
	assert.Equal(t, 2, summary.Total)

	final := waitFinished(t, fx.runs, summary.ID)
	assert.Equal(t, models.RunStateCompleted, final.State)
	assert.Equal(t, 100, final.Progress)

	_, table, err := fx.runs.Result(context.Background(), summary.ID)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Bosch", table.Rows[0][0])

	_, rows, err := fx.runs.ErrorRows(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ErrorRow{{Manufacturer: "ACME", Article: "missing"}}, rows)

	dir := t.TempDir()
	path, err := fx.runs.ExportResult(context.Background(), summary.ID, dir)
	require.NoError(t, err)
	assert.FileExists(t, path)

	errorsPath, err := fx.runs.ExportErrors(context.Background(), summary.ID, dir)
	require.NoError(t, err)
	items, err := importer.ImportSearchFile(errorsPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchItem{{Manufacturer: "ACME", Article: "missing"}}, items)

	runs, err := fx.runs.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.ID, runs[0].ID)

	entries, err := os.ReadDir(fx.runs.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "uploaded file is removed after import")
}

func TestStartRunRejectsBadInput(t *testing.T) {
	fx := newFixture(t, &stubClient{})

	tests := []struct {
		name     string
		filename string
		data     []byte
		drop     bool
		status   int
	}{
		{"unsupported extension", "input.pdf", []byte("%PDF"), false, http.StatusBadRequest},
		{"wrong header", "input.csv", []byte("Brand;Part\nBosch;1\n"), false, http.StatusBadRequest},
		{"incomplete rows refused", "input.csv", []byte("Производитель;Артикул\nBosch;\nACME;1\n"), false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.runs.StartRun(context.Background(), tt.filename, bytes.NewReader(tt.data), tt.drop)
			assert.Equal(t, tt.status, statusOf(t, err))
		})
	}

	summary, err := fx.runs.StartRun(context.Background(), "input.csv", bytes.NewReader([]byte("Производитель;Артикул\nBosch;\nACME;1\n")), true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	waitFinished(t, fx.runs, summary.ID)
}

func TestBusyCancelAndConflicts(t *testing.T) {
	client := &stubClient{block: make(chan struct{})}
	fx := newFixture(t, client)
	data := workbook(t, []interface{}{"Bosch", "1"}, []interface{}{"Bosch", "2"})

	summary, err := fx.runs.StartRun(context.Background(), "input.xlsx", bytes.NewReader(data), false)
	require.NoError(t, err)

	_, err = fx.runs.StartRun(context.Background(), "input.xlsx", bytes.NewReader(data), false)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, _, err = fx.runs.Result(context.Background(), summary.ID)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	runs, err := fx.runs.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	assert.Equal(t, summary.ID, runs[0].ID)

	_, err = fx.runs.CancelRun(context.Background(), summary.ID)
	require.NoError(t, err)

	final := waitFinished(t, fx.runs, summary.ID)
	assert.Equal(t, models.RunStateFailed, final.State)

	_, err = fx.runs.CancelRun(context.Background(), summary.ID)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, _, err = fx.runs.Result(context.Background(), summary.ID)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, err = fx.runs.GetRun(context.Background(), "unknown")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "GetRun", operationOf(t, err))
	_, err = fx.runs.CancelRun(context.Background(), "unknown")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "CancelRun", operationOf(t, err))
}

func TestConfigService(t *testing.T) {
	fx := newFixture(t, &stubClient{})

	cfg := fx.configs.Parser()
	cfg.OnlyInStock = true
	cfg.BlackList = []models.BrandStorePair{{"Bosch", "Shop"}}
	update, err := fx.configs.UpdateParser(cfg)
	require.NoError(t, err)
	assert.True(t, update.Changed)
	assert.Empty(t, update.Warning)
	assert.True(t, bool(fx.configs.Parser().OnlyInStock))

	update, err = fx.configs.UpdateParser(cfg)
	require.NoError(t, err)
	assert.False(t, update.Changed)

	cfg.StoreRatingLimit = 0
	_, err = fx.configs.UpdateParser(cfg)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	reset, err := fx.configs.ResetParser()
	require.NoError(t, err)
	assert.False(t, bool(reset.Config.OnlyInStock))
	assert.Len(t, reset.Config.BlackList, 1)

	app := fx.configs.App()
	app.TimeDelay = -1
	_, err = fx.configs.UpdateApp(app)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}
