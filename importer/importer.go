package importer

import (
	"fmt"
	"strings"

	"pricecheck/internal/domain/models"
	"pricecheck/internal/processing"
)

// Result строки файла после проверки
type Result struct {
	Rows    [][2]string
	Dropped int // отброшено неполных строк с подтверждения пользователя
}

// ImportSearchFile читает файл проценки (Производитель, Артикул).
// Неполные строки отбрасываются только после подтверждения confirm.
func ImportSearchFile(filePath string, confirm models.ConfirmFunc) ([]models.SearchItem, error) {
	result, err := importTwoColumns(filePath, processing.SearchColumns, confirm)
	if err != nil {
		return nil, err
	}

	items := make([]models.SearchItem, 0, len(result.Rows))
	for _, row := range result.Rows {
		items = append(items, models.SearchItem{Manufacturer: row[0], Article: row[1]})
	}
	return items, nil
}

// ImportListFile читает файл черного или белого списка (Бренд, Магазин)
func ImportListFile(filePath string, confirm models.ConfirmFunc) ([]models.BrandStorePair, error) {
	result, err := importTwoColumns(filePath, processing.ListColumns, confirm)
	if err != nil {
		return nil, err
	}

	pairs := make([]models.BrandStorePair, 0, len(result.Rows))
	for _, row := range result.Rows {
		pairs = append(pairs, models.BrandStorePair{row[0], row[1]})
	}
	return pairs, nil
}

// importTwoColumns проверяет заголовок и собирает строки из двух непустых ячеек.
// Полностью пустые строки пропускаются молча.
func importTwoColumns(filePath string, header []string, confirm models.ConfirmFunc) (*Result, error) {
	rows, err := readRows(filePath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	got := trimTrailingEmpty(rows[0])
	if !sameHeader(got, header) {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrHeaderMismatch, header, got)
	}

	var (
		complete   [][2]string
		incomplete int
	)
	for i, row := range rows[1:] {
		row = trimTrailingEmpty(row)
		if len(row) == 0 {
			continue
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d columns", ErrHeaderMismatch, i+2, len(row))
		}

		first := cell(row, 0)
		second := cell(row, 1)
		if first == "" || second == "" {
			incomplete++
			continue
		}
		complete = append(complete, [2]string{first, second})
	}

	if len(complete) == 0 && incomplete == 0 {
		return nil, ErrNoData
	}
	if incomplete > 0 {
		if !confirm.Confirm(incomplete) {
			return nil, ErrImportCancelled
		}
		if len(complete) == 0 {
			return nil, ErrNoData
		}
	}

	return &Result{Rows: complete, Dropped: incomplete}, nil
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}
