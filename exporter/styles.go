package exporter

import (
	"fmt"
	"regexp"

	"github.com/xuri/excelize/v2"
)

const (
	highlightFill = "#607EBC"
	highlightFont = "#FAF5EE"
	markerFont    = "#FF0000"
	maxColWidth   = 50.0
)

var (
	// numericHeader колонки с ценами, количеством и сроками: выравниваются вправо
	numericHeader = regexp.MustCompile(`^(Цена магазина|Кол-во магазина|Кол-во дней доставки магазина|Мин |Сред |Макс )`)
	// statisticHeader шесть колонок статистики цен выделяются цветом
	statisticHeader = regexp.MustCompile(`^(Мин|Сред|Макс) (НАЛИЧИЕ|ПОД ЗАКАЗ)$`)
)

// styleSet идентификаторы стилей одной книги
type styleSet struct {
	header           int
	headerRight      int
	highlighted      int
	highlightedRight int
	cell             int
	cellRight        int
	marker           int
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	left := &excelize.Alignment{Horizontal: "left", Vertical: "center"}
	right := &excelize.Alignment{Horizontal: "right", Vertical: "center"}
	fill := excelize.Fill{Type: "pattern", Color: []string{highlightFill}, Pattern: 1}
	bold := &excelize.Font{Bold: true}
	boldLight := &excelize.Font{Bold: true, Color: highlightFont}

	set := &styleSet{}
	definitions := map[*int]*excelize.Style{
		&set.header:           {Font: bold, Border: thinBorder(), Alignment: left},
		&set.headerRight:      {Font: bold, Border: thinBorder(), Alignment: right},
		&set.highlighted:      {Font: boldLight, Fill: fill, Border: thinBorder(), Alignment: left},
		&set.highlightedRight: {Font: boldLight, Fill: fill, Border: thinBorder(), Alignment: right},
		&set.cell:             {Border: thinBorder(), Alignment: left},
		&set.cellRight:        {Border: thinBorder(), Alignment: right},
		&set.marker:           {Font: &excelize.Font{Bold: true, Color: markerFont}, Border: thinBorder(), Alignment: left},
	}

	for target, style := range definitions {
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, fmt.Errorf("failed to create style: %w", err)
		}
		*target = id
	}
	return set, nil
}

// headerStyle выбирает стиль заголовка колонки
func (s *styleSet) headerStyle(column string, highlightAll bool) int {
	highlighted := highlightAll || statisticHeader.MatchString(column)
	numeric := numericHeader.MatchString(column)
	switch {
	case highlighted && numeric:
		return s.highlightedRight
	case highlighted:
		return s.highlighted
	case numeric:
		return s.headerRight
	default:
		return s.header
	}
}

// cellStyle выбирает стиль ячейки данных
func (s *styleSet) cellStyle(value string, numeric bool) int {
	switch {
	case isMarker(value):
		return s.marker
	case numeric:
		return s.cellRight
	default:
		return s.cell
	}
}

// columnWidth ширина колонки по самой длинной строке, не больше 50
func columnWidth(maxRunes int) float64 {
	width := float64(maxRunes+2) * 1.1
	if width > maxColWidth {
		return maxColWidth
	}
	return width
}
