package processing

import (
	"strconv"

	"pricecheck/internal/domain/models"
)

// BuildRow собирает строку результата фиксированной ширины RowWidth:
// сводные поля, затем по 7 полей на каждое из первых MaxOffers предложений.
// Пустой список предложений дает маркер NoDataMarker в первой ячейке блока.
func BuildRow(summary []string, offers []models.Offer) []string {
	row := make([]string, 0, RowWidth)
	for i := 0; i < SummaryFields; i++ {
		if i < len(summary) {
			row = append(row, summary[i])
		} else {
			row = append(row, "")
		}
	}

	if len(offers) == 0 {
		row = append(row, NoDataMarker)
	}

	for _, offer := range Top(offers, MaxOffers) {
		row = append(row, offerFields(offer)...)
	}

	for len(row) < RowWidth {
		row = append(row, "")
	}
	return row
}

// offerFields поля одного предложения в порядке колонок магазина
func offerFields(o models.Offer) []string {
	qty := o.Qty
	if qty < 0 {
		qty = 0
	}
	return []string{
		strconv.FormatInt(o.Price.Int(), 10),
		qty.String(),
		o.QtyDescr,
		o.Category,
		o.Store,
		o.PaymentTerms,
		o.DeliveryDays.String(),
	}
}

// StoreSlots количество заполненных блоков магазинов в строке результата
func StoreSlots(row []string) int {
	slots := 0
	for i := 0; i < MaxOffers; i++ {
		start := SummaryFields + i*FieldsPerOffer
		if start >= len(row) {
			break
		}
		end := start + FieldsPerOffer
		if end > len(row) {
			end = len(row)
		}
		for _, cell := range row[start:end] {
			if cell != "" {
				slots = i + 1
				break
			}
		}
	}
	return slots
}

// CompactTable обрезает строки до фактически используемых блоков магазинов
// (не меньше одного) и возвращает таблицу с соответствующим заголовком.
func CompactTable(rows [][]string) *models.Table {
	slots := 1
	for _, row := range rows {
		if n := StoreSlots(row); n > slots {
			slots = n
		}
	}

	columns := GenerateColumns(slots)
	width := len(columns)
	compacted := make([][]string, 0, len(rows))
	for _, row := range rows {
		out := make([]string, width)
		copy(out, row)
		compacted = append(compacted, out)
	}
	return &models.Table{Columns: columns, Rows: compacted}
}
