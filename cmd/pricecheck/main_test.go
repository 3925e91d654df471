package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecheck/exporter"
	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/pipeline"
)

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"да\n", true},
		{" YES \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			confirm := promptConfirm(strings.NewReader(tt.input), &out)
			assert.Equal(t, tt.want, confirm(3))
			assert.Contains(t, out.String(), "3 неполных строк")
		})
	}
}

func TestParseListKind(t *testing.T) {
	kind, err := parseListKind("black")
	require.NoError(t, err)
	assert.Equal(t, exporter.BlackList, kind)

	kind, err = parseListKind("белый")
	require.NoError(t, err)
	assert.Equal(t, exporter.WhiteList, kind)

	_, err = parseListKind("grey")
	assert.Error(t, err)
}

func TestListOf(t *testing.T) {
	parser := config.DefaultParserConfig()
	parser.BlackList = []models.BrandStorePair{{"Bosch", "Shop A"}}

	assert.Len(t, listOf(parser, exporter.BlackList), 1)
	assert.Empty(t, listOf(parser, exporter.WhiteList))
}

func TestDescribeStartError(t *testing.T) {
	assert.Contains(t, describeStartError(pipeline.ErrNoAPIKeys), "PRICECHECK_API_KEYS")
	assert.Equal(t, "boom", describeStartError(errors.New("boom")))
}

func TestPrintRunResult(t *testing.T) {
	started := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	finished := started.Add(90 * time.Second)

	var out bytes.Buffer
	printRunResult(&out, &pipeline.Result{
		Summary: models.RunSummary{
			ID:         "run-1",
			InputFile:  "parts.xlsx",
			StartedAt:  started,
			FinishedAt: &finished,
			Total:      3,
			Succeeded:  2,
			Failed:     1,
		},
		Errors:    []models.ErrorRow{{Manufacturer: "Bosch", Article: "X"}},
		ExportErr: errors.New("disk full"),
	})

	text := out.String()
	assert.Contains(t, text, "run-1")
	assert.Contains(t, text, "1m30s")
	assert.Contains(t, text, "Ошибочные артикулы")
	assert.Contains(t, text, "disk full")
}

func TestSaveOutputsWritesErrorRows(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	result := &pipeline.Result{
		Table:  &models.Table{Columns: []string{"Производитель", "Артикул"}, Rows: [][]string{{"Bosch", "123"}}},
		Errors: []models.ErrorRow{{Manufacturer: "ACME", Article: "missing"}},
	}

	resultPath, errorsPath, err := saveOutputs(dir, result, now, models.AlwaysConfirm)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, exporter.ResultFileName(now)), resultPath)
	assert.Equal(t, filepath.Join(dir, exporter.ErrorsFileName(now)), errorsPath)
	assert.FileExists(t, resultPath)
	assert.FileExists(t, errorsPath)
}

func TestSaveOutputsSkipsEmptyParts(t *testing.T) {
	dir := t.TempDir()
	resultPath, errorsPath, err := saveOutputs(dir, &pipeline.Result{Table: &models.Table{}}, time.Now(), models.AlwaysConfirm)
	require.NoError(t, err)
	assert.Empty(t, resultPath)
	assert.Empty(t, errorsPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrintRuns(t *testing.T) {
	var out bytes.Buffer
	printRuns(&out, []models.RunSummary{{
		ID:        "run-1",
		InputFile: "/tmp/in/parts.xlsx",
		State:     models.RunStateCompleted,
		StartedAt: time.Now(),
		Total:     2,
	}})

	text := out.String()
	assert.Contains(t, text, "run-1")
	assert.Contains(t, text, "parts.xlsx")
	assert.NotContains(t, text, "/tmp/in")
	assert.Contains(t, text, "completed")
}

func TestPrintSettings(t *testing.T) {
	parser := config.DefaultParserConfig()
	parser.IsStoreRatingLimit = true
	parser.StoreRatingLimit = 4

	var out bytes.Buffer
	printSettings(&out, config.DefaultAppConfig(), parser, "/data/out")

	text := out.String()
	assert.Contains(t, text, "/data/out")
	assert.Contains(t, text, "4 и выше")
	assert.Contains(t, text, "без ограничения")
}
