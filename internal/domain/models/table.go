package models

// SearchItem строка входного файла: производитель и артикул
type SearchItem struct {
	Manufacturer string `json:"manufacturer"`
	Article      string `json:"article"`
}

// ErrorRow артикул, по которому не удалось получить данные
type ErrorRow struct {
	Manufacturer string `json:"manufacturer"`
	Article      string `json:"article"`
}

// BrandStorePair пара (бренд, магазин) черного или белого списка.
// В JSON сериализуется как массив из двух строк.
type BrandStorePair [2]string

// Brand бренд пары
func (p BrandStorePair) Brand() string { return p[0] }

// Store магазин пары
func (p BrandStorePair) Store() string { return p[1] }

// Table табличные данные, которыми обмениваются драйвер, экспорт и UI
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len количество строк данных
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column возвращает значения колонки по индексу; короткие строки дают ""
func (t *Table) Column(idx int) []string {
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}
	return values
}

// ErrorRowsTable собирает таблицу ошибочных артикулов
func ErrorRowsTable(columns []string, rows []ErrorRow) *Table {
	table := &Table{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{r.Manufacturer, r.Article})
	}
	return table
}

// ConfirmFunc спрашивает подтверждение на отбрасывание dropped неполных строк.
// nil трактуется как отказ.
type ConfirmFunc func(dropped int) bool

// Confirm вызывает f; nil-функция означает отказ
func (f ConfirmFunc) Confirm(dropped int) bool {
	return f != nil && f(dropped)
}

// AlwaysConfirm подтверждает отбрасывание без вопросов
func AlwaysConfirm(int) bool { return true }
