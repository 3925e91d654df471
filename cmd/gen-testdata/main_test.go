package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecheck/importer"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/processing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	opts := Options{Rows: 20, Incomplete: 3, Seed: 42}
	header, first := Generate(opts)
	_, second := Generate(opts)

	assert.Equal(t, processing.SearchColumns, header)
	assert.Equal(t, first, second)
	assert.Len(t, first, 23)

	incomplete := 0
	for _, row := range first {
		if row[0] == "" || row[1] == "" {
			incomplete++
		}
	}
	assert.Equal(t, 3, incomplete)
}

func TestGeneratedFilesImport(t *testing.T) {
	dir := t.TempDir()
	header, data := Generate(Options{Rows: 10, Incomplete: 2, Seed: 7})

	for _, name := range []string{"input.xlsx", "input.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if filepath.Ext(name) == ".csv" {
				require.NoError(t, writeCSV(path, header, data))
			} else {
				require.NoError(t, writeXLSX(path, header, data))
			}

			_, err := importer.ImportSearchFile(path, nil)
			assert.ErrorIs(t, err, importer.ErrImportCancelled)

			items, err := importer.ImportSearchFile(path, models.AlwaysConfirm)
			require.NoError(t, err)
			assert.Len(t, items, 10)
		})
	}
}

func TestGenerateList(t *testing.T) {
	dir := t.TempDir()
	header, data := Generate(Options{Rows: 5, List: true, Seed: 1})
	assert.Equal(t, processing.ListColumns, header)

	path := filepath.Join(dir, "black.xlsx")
	require.NoError(t, writeXLSX(path, header, data))

	pairs, err := importer.ImportListFile(path, nil)
	require.NoError(t, err)
	assert.Len(t, pairs, 5)
}
