package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"pricecheck/internal/domain/models"
)

// writeWorkbook создает xlsx с переданными строками на первом листе
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportSearchFile(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Производитель", "Артикул"},
		{"Bosch", 123},
		{"ACME", "#456"},
		{" Mann ", " W 712/75 "},
	})

	items, err := ImportSearchFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.SearchItem{
		{Manufacturer: "Bosch", Article: "123"},
		{Manufacturer: "ACME", Article: "#456"},
		{Manufacturer: "Mann", Article: "W 712/75"},
	}, items)
}

func TestImportSearchFileHeaderMismatch(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{"wrong names", [][]interface{}{{"Бренд", "Артикул"}, {"Bosch", "1"}}},
		{"swapped", [][]interface{}{{"Артикул", "Производитель"}, {"1", "Bosch"}}},
		{"extra column", [][]interface{}{{"Производитель", "Артикул", "Цена"}, {"Bosch", "1", "10"}}},
		{"data outside header", [][]interface{}{{"Производитель", "Артикул"}, {"Bosch", "1", "10"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportSearchFile(writeWorkbook(t, tt.rows), models.AlwaysConfirm)
			assert.ErrorIs(t, err, ErrHeaderMismatch)
		})
	}
}

func TestImportSearchFileNoData(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"Производитель", "Артикул"}})
	_, err := ImportSearchFile(path, models.AlwaysConfirm)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestImportIncompleteRows(t *testing.T) {
	rows := [][]interface{}{
		{"Производитель", "Артикул"},
		{"Bosch", "123"},
		{"ACME", "   "},
		{nil, "789"},
	}

	t.Run("confirmed", func(t *testing.T) {
		var asked int
		items, err := ImportSearchFile(writeWorkbook(t, rows), func(dropped int) bool {
			asked = dropped
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, 2, asked)
		assert.Equal(t, []models.SearchItem{{Manufacturer: "Bosch", Article: "123"}}, items)
	})

	t.Run("refused", func(t *testing.T) {
		items, err := ImportSearchFile(writeWorkbook(t, rows), func(int) bool { return false })
		assert.ErrorIs(t, err, ErrImportCancelled)
		assert.Nil(t, items)
	})

	t.Run("nil confirm is refusal", func(t *testing.T) {
		_, err := ImportSearchFile(writeWorkbook(t, rows), nil)
		assert.ErrorIs(t, err, ErrImportCancelled)
	})

	t.Run("nothing left after drop", func(t *testing.T) {
		path := writeWorkbook(t, [][]interface{}{
			{"Производитель", "Артикул"},
			{"ACME", ""},
			{"", "1"},
		})
		_, err := ImportSearchFile(path, models.AlwaysConfirm)
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestImportListFile(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Бренд", "Магазин"},
		{"Bosch", "Автодок"},
		{"Mann", " Шоп-1 "},
	})

	pairs, err := ImportListFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.BrandStorePair{{"Bosch", "Автодок"}, {"Mann", "Шоп-1"}}, pairs)

	_, err = ImportSearchFile(path, nil)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestImportCSV(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"utf8 semicolon", []byte("Производитель;Артикул\nBosch;123\nACME;#456\n")},
		{"utf8 bom comma", []byte("\xef\xbb\xbfПроизводитель,Артикул\nBosch,123\nACME,#456\n")},
		{"windows-1251", mustCP1251(t, "Производитель;Артикул\r\nBosch;123\r\nACME;#456\r\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "input.csv")
			require.NoError(t, os.WriteFile(path, tt.content, 0o644))

			items, err := ImportSearchFile(path, nil)
			require.NoError(t, err)
			assert.Equal(t, []models.SearchItem{
				{Manufacturer: "Bosch", Article: "123"},
				{Manufacturer: "ACME", Article: "#456"},
			}, items)
		})
	}
}

func TestImportUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := ImportSearchFile(path, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func mustCP1251(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.Windows1251.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}
