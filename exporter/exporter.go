package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"pricecheck/internal/domain/models"
	"pricecheck/internal/processing"
)

var (
	// ErrExportCancelled пользователь отказался отбрасывать неполные строки
	ErrExportCancelled = errors.New("export cancelled")
	// ErrNoData нечего экспортировать
	ErrNoData = errors.New("no data to export")
)

// ListKind вид списка магазинов
type ListKind string

const (
	BlackList ListKind = "black"
	WhiteList ListKind = "white"
)

// Options параметры записи таблицы
type Options struct {
	SheetName string
	// HighlightHeader выделять цветом весь заголовок, а не только статистику
	HighlightHeader bool
	// RequireAllCells строка без хотя бы одной непустой ячейки считается неполной
	RequireAllCells bool
	Confirm         models.ConfirmFunc
}

// ResultFileName имя файла результата проценки
func ResultFileName(now time.Time) string {
	return fmt.Sprintf("Проценка товара от %s.xlsx", now.Format("02-Jan-2006 15-04-05"))
}

// ErrorsFileName имя файла ошибочных артикулов
func ErrorsFileName(now time.Time) string {
	return fmt.Sprintf("Ошибочные_артикулы_%s.xlsx", now.Format("2006-01-02"))
}

// ListFileName имя файла черного или белого списка
func ListFileName(kind ListKind, now time.Time) string {
	prefix := "Черный_список"
	if kind == WhiteList {
		prefix = "Белый_список"
	}
	return fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("2006-01-02"))
}

// ExportResults пишет таблицу проценки. Строки, ширина которых не совпадает
// с заголовком, отбрасываются с подтверждения confirm.
func ExportResults(path string, table *models.Table, confirm models.ConfirmFunc) error {
	return WriteTable(path, table, Options{
		SheetName: processing.ResultSheet,
		Confirm:   confirm,
	})
}

// ExportErrors пишет список ошибочных артикулов
func ExportErrors(path string, rows []models.ErrorRow) error {
	return WriteTable(path, models.ErrorRowsTable(processing.SearchColumns, rows), Options{
		SheetName:       processing.ErrorsSheet,
		HighlightHeader: true,
		RequireAllCells: true,
		Confirm:         models.AlwaysConfirm,
	})
}

// ExportList пишет черный или белый список
func ExportList(path string, pairs []models.BrandStorePair, confirm models.ConfirmFunc) error {
	table := &models.Table{Columns: processing.ListColumns, Rows: make([][]string, 0, len(pairs))}
	for _, p := range pairs {
		table.Rows = append(table.Rows, []string{p.Brand(), p.Store()})
	}
	return WriteTable(path, table, Options{
		SheetName:       processing.ListSheetName,
		HighlightHeader: true,
		RequireAllCells: true,
		Confirm:         confirm,
	})
}

// WriteTable записывает таблицу в xlsx с оформлением: жирный заголовок с
// границами, выделение статистики, выравнивание чисел вправо, маркеры
// отсутствия данных красным, автоширина колонок и закрепленная первая строка.
func WriteTable(path string, table *models.Table, opts Options) error {
	if table == nil || len(table.Columns) == 0 {
		return ErrNoData
	}

	rows, dropped := prepareRows(table, opts.RequireAllCells)
	if dropped > 0 && !opts.Confirm.Confirm(dropped) {
		return ErrExportCancelled
	}
	if len(rows) == 0 {
		return ErrNoData
	}

	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return err
	}

	numeric := make([]bool, len(table.Columns))
	widths := make([]int, len(table.Columns))

	for i, column := range table.Columns {
		numeric[i] = numericHeader.MatchString(column)
		widths[i] = utf8.RuneCountInString(column)

		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheetName, cell, column); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, styles.headerStyle(column, opts.HighlightHeader)); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if value != "" {
				if err := f.SetCellStr(sheetName, cell, value); err != nil {
					return fmt.Errorf("failed to write cell %s: %w", cell, err)
				}
			}
			if err := f.SetCellStyle(sheetName, cell, cell, styles.cellStyle(value, numeric[colIdx])); err != nil {
				return fmt.Errorf("failed to style cell %s: %w", cell, err)
			}
			if n := utf8.RuneCountInString(value); n > widths[colIdx] {
				widths[colIdx] = n
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, columnWidth(w)); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// prepareRows приводит ячейки к строкам и отбирает строки ожидаемой ширины.
// Возвращает подходящие строки и количество отброшенных.
func prepareRows(table *models.Table, requireAllCells bool) ([][]string, int) {
	width := len(table.Columns)
	rows := make([][]string, 0, len(table.Rows))
	dropped := 0

	for _, row := range table.Rows {
		if len(row) != width {
			dropped++
			continue
		}
		if requireAllCells && hasEmptyCell(row) {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped
}

func hasEmptyCell(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) == "" {
			return true
		}
	}
	return false
}

func isMarker(value string) bool {
	return processing.IsMarker(value)
}
