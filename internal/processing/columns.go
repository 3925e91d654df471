package processing

import "fmt"

const (
	// MaxOffers максимальное количество предложений в строке результата
	MaxOffers = 10
	// FieldsPerOffer количество полей одного предложения
	FieldsPerOffer = 7
	// SummaryFields количество сводных полей в начале строки
	SummaryFields = 8
	// RowWidth фиксированная ширина строки результата
	RowWidth = SummaryFields + MaxOffers*FieldsPerOffer
)

// Маркеры, которые экспорт выделяет красным
const (
	NoDataMarker  = "Данные отсутствуют"
	NoMoreMarker  = "Больше данных нет"
	ResultSheet   = "Проценка товаров"
	ErrorsSheet   = "Ошибочные артикулы"
	ListSheetName = "Список"
)

var (
	// SearchColumns заголовок входного файла проценки
	SearchColumns = []string{"Производитель", "Артикул"}
	// ListColumns заголовок файла черного/белого списка
	ListColumns = []string{"Бренд", "Магазин"}
	// ResultColumns сводная часть заголовка результата
	ResultColumns = []string{
		"Бренд", "Артикул",
		"Мин НАЛИЧИЕ", "Сред НАЛИЧИЕ", "Макс НАЛИЧИЕ",
		"Мин ПОД ЗАКАЗ", "Сред ПОД ЗАКАЗ", "Макс ПОД ЗАКАЗ",
	}
)

// storeColumnTemplates шаблоны колонок одного магазина
var storeColumnTemplates = [FieldsPerOffer]string{
	"Цена магазина %d",
	"Кол-во магазина %d",
	"Описание кол-ва магазина %d",
	"Название детали магазина %d",
	"Название магазина %d",
	"Условия оплаты магазина %d",
	"Кол-во дней доставки магазина %d",
}

// GenerateColumns возвращает заголовок таблицы результата для stores магазинов.
// Количество магазинов приводится к диапазону 1..MaxOffers.
// Каждый вызов возвращает новый срез.
func GenerateColumns(stores int) []string {
	if stores < 1 {
		stores = 1
	}
	if stores > MaxOffers {
		stores = MaxOffers
	}

	columns := make([]string, 0, SummaryFields+stores*FieldsPerOffer)
	columns = append(columns, ResultColumns...)
	for i := 1; i <= stores; i++ {
		for _, tmpl := range storeColumnTemplates {
			columns = append(columns, fmt.Sprintf(tmpl, i))
		}
	}
	return columns
}

// IsMarker сообщает, что значение ячейки является служебным маркером
func IsMarker(value string) bool {
	return value == NoDataMarker || value == NoMoreMarker
}
