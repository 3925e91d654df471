package processing

import (
	"regexp"
	"strings"
)

// numericArticle артикул, записанный числом, в т.ч. выгруженный из Excel как "456.0"
var numericArticle = regexp.MustCompile(`^(\d+)(?:[.,]0+)?$`)

// NormalizeArticle приводит артикул к виду, который ожидает API:
// удаляет '#' и пробелы по краям, числовые значения записывает целым
// числом ("456.0" -> "456"). Нечисловые артикулы возвращаются как есть.
func NormalizeArticle(article string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(article, "#", ""))
	if m := numericArticle.FindStringSubmatch(cleaned); m != nil {
		return m[1]
	}
	return cleaned
}
