package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number числовое поле ответа API.
// Сервис отдает числа то как JSON-числа, то как строки ("1 250", "12,5"),
// поэтому декодируем оба варианта.
type Number float64

// UnmarshalJSON принимает число, числовую строку, пустую строку или null
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid number %s: %w", string(data), err)
	}
	*n = Number(f)
	return nil
}

// Int возвращает значение, усеченное до целого
func (n Number) Int() int64 {
	return int64(n)
}

// String форматирует число без лишних нулей: 10 -> "10", 12.5 -> "12.5"
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// ParseNumber разбирает числовую строку с пробелами-разделителями тысяч и
// запятой в качестве десятичного разделителя. Пустая строка дает 0.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}

// Text текстовое поле, которое сервис может прислать и числом, и строкой.
// Сохраняет исходное текстовое представление.
type Text string

// UnmarshalJSON принимает строку, число или null
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(string(data))
	return nil
}

// Offer одно предложение магазина из массива table ответа API
type Offer struct {
	Price        Number `json:"priceV2"`
	Qty          Number `json:"qtyV2"`
	QtyDescr     string `json:"descr_qtyV2"`
	Category     string `json:"class_cat"`
	Store        string `json:"class_user"`
	PaymentTerms string `json:"descr_price"`
	DeliveryDays Number `json:"delivery_days"`
	InStock      Number `json:"instock"`
	Rating       Number `json:"rating"`
	Brand        string `json:"class_man"`
}

// IsInStock сообщает, что товар есть в наличии (instock == 1)
func (o Offer) IsInStock() bool {
	return o.InStock == 1
}

// Pair возвращает пару (бренд, магазин) для сверки с черным/белым списком
func (o Offer) Pair() BrandStorePair {
	return BrandStorePair{o.Brand, o.Store}
}

// PriceResponse полезная нагрузка ответа API после распаковки XML-конверта
type PriceResponse struct {
	Error      string  `json:"error"`
	MinInStock Text    `json:"price_min_instock"`
	AvgInStock Text    `json:"price_avg_instock"`
	MaxInStock Text    `json:"price_max_instock"`
	MinOnOrder Text    `json:"price_min_order"`
	AvgOnOrder Text    `json:"price_avg_order"`
	MaxOnOrder Text    `json:"price_max_order"`
	Offers     []Offer `json:"table"`
}

// Summary возвращает 8 сводных полей строки результата
func (r *PriceResponse) Summary(brand, article string) []string {
	return []string{
		brand,
		article,
		string(r.MinInStock),
		string(r.AvgInStock),
		string(r.MaxInStock),
		string(r.MinOnOrder),
		string(r.AvgOnOrder),
		string(r.MaxOnOrder),
	}
}
