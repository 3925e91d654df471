package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricecheck/importer"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/processing"
)

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportListRoundTrip(t *testing.T) {
	pairs := []models.BrandStorePair{{"Bosch", "Автодок"}, {"Hyundai/Kia/Mobis", "Шоп-1"}}
	path := filepath.Join(t.TempDir(), ListFileName(BlackList, time.Now()))

	require.NoError(t, ExportList(path, pairs, nil))

	imported, err := importer.ImportListFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, pairs, imported)
}

func TestExportListIncompleteRows(t *testing.T) {
	pairs := []models.BrandStorePair{{"Bosch", "Автодок"}, {"Mann", ""}}
	dir := t.TempDir()

	err := ExportList(filepath.Join(dir, "refused.xlsx"), pairs, func(int) bool { return false })
	assert.ErrorIs(t, err, ErrExportCancelled)

	path := filepath.Join(dir, "confirmed.xlsx")
	require.NoError(t, ExportList(path, pairs, models.AlwaysConfirm))
	rows := readSheet(t, path, processing.ListSheetName)
	assert.Equal(t, [][]string{{"Бренд", "Магазин"}, {"Bosch", "Автодок"}}, rows)

	err = ExportList(filepath.Join(dir, "empty.xlsx"), []models.BrandStorePair{{"", ""}}, models.AlwaysConfirm)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExportResultsRoundTrip(t *testing.T) {
	offers := []models.Offer{
		{Price: 1250, Qty: 4, QtyDescr: "Гарантия наличия", Category: "Свеча", Store: "Автодок", PaymentTerms: "безнал", DeliveryDays: 1},
		{Price: 1300, Qty: 1, QtyDescr: "", Category: "Свеча", Store: "Шоп-1", PaymentTerms: "нал", DeliveryDays: 2},
	}
	summary := []string{"Bosch", "123", "1250", "1275", "1300", "", "", ""}
	table := processing.CompactTable([][]string{
		processing.BuildRow(summary, offers),
		processing.BuildRow([]string{"ACME", "456", "", "", "", "", "", ""}, nil),
	})

	path := filepath.Join(t.TempDir(), "out", ResultFileName(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)))
	require.NoError(t, ExportResults(path, table, nil))
	assert.Equal(t, "Проценка товара от 05-Mar-2024 14-07-09.xlsx", filepath.Base(path))

	rows := readSheet(t, path, processing.ResultSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, table.Columns, rows[0])
	for i, want := range table.Rows {
		got := rows[i+1]
		// GetRows отбрасывает пустые ячейки в конце строки
		for j, value := range want {
			if j < len(got) {
				assert.Equal(t, value, got[j], "row %d col %d", i, j)
			} else {
				assert.Empty(t, value, "row %d col %d", i, j)
			}
		}
	}
}

func TestExportResultsFormatting(t *testing.T) {
	table := processing.CompactTable([][]string{
		processing.BuildRow([]string{"ACME", "456"}, nil),
	})
	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, ExportResults(path, table, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := processing.ResultSheet
	panes, err := f.GetPanes(sheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)

	markerStyleID, err := f.GetCellStyle(sheet, "I2")
	require.NoError(t, err)
	markerStyle, err := f.GetStyle(markerStyleID)
	require.NoError(t, err)
	require.NotNil(t, markerStyle.Font)
	assert.True(t, markerStyle.Font.Bold)

	statStyleID, err := f.GetCellStyle(sheet, "C1")
	require.NoError(t, err)
	statStyle, err := f.GetStyle(statStyleID)
	require.NoError(t, err)
	assert.NotEmpty(t, statStyle.Fill.Color)

	brandStyleID, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)
	brandStyle, err := f.GetStyle(brandStyleID)
	require.NoError(t, err)
	require.NotNil(t, brandStyle.Font)
	assert.True(t, brandStyle.Font.Bold)

	width, err := f.GetColWidth(sheet, "I")
	require.NoError(t, err)
	assert.InDelta(t, columnWidth(len([]rune("Описание кол-ва магазина 1"))), width, 0.01)
}

func TestExportResultsSkipsMisshapenRows(t *testing.T) {
	table := &models.Table{
		Columns: processing.GenerateColumns(1),
		Rows: [][]string{
			processing.BuildRow([]string{"ACME", "456"}, nil)[:15],
			{"short"},
		},
	}
	dir := t.TempDir()

	assert.ErrorIs(t, ExportResults(filepath.Join(dir, "a.xlsx"), table, nil), ErrExportCancelled)
	require.NoError(t, ExportResults(filepath.Join(dir, "b.xlsx"), table, models.AlwaysConfirm))
	assert.Len(t, readSheet(t, filepath.Join(dir, "b.xlsx"), processing.ResultSheet), 2)
}

func TestExportErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ErrorsFileName(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, ExportErrors(path, []models.ErrorRow{{Manufacturer: "Bosch", Article: "456"}}))
	assert.Equal(t, "Ошибочные_артикулы_2024-03-05.xlsx", filepath.Base(path))

	items, err := importer.ImportSearchFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchItem{{Manufacturer: "Bosch", Article: "456"}}, items)
}

func TestColumnWidth(t *testing.T) {
	assert.InDelta(t, 4.4, columnWidth(2), 0.001)
	assert.Equal(t, 50.0, columnWidth(100))
}

func TestListFileName(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Черный_список_2024-01-02.xlsx", ListFileName(BlackList, now))
	assert.Equal(t, "Белый_список_2024-01-02.xlsx", ListFileName(WhiteList, now))
}
