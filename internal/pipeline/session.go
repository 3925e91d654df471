package pipeline

import (
	"context"
	"strings"

	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/priceapi"
	"pricecheck/internal/processing"
)

// APIClient клиент сервиса проценки, которым пользуется драйвер
type APIClient interface {
	// Request возвращает nil, если по артикулу нет результата
	Request(ctx context.Context, q priceapi.Query) *models.PriceResponse
	KeyCount() int
}

// cacheResetter клиент с кэшем ответов, который сбрасывается перед каждым прогоном
type cacheResetter interface {
	ResetCache()
}

// HistoryRecorder хранилище завершенных прогонов
type HistoryRecorder interface {
	SaveRun(ctx context.Context, run models.RunSummary, result *models.Table, errorRows []models.ErrorRow) error
}

// Session снимок всего, что нужно одному прогону. Создается на этапе
// подготовки и дальше не меняется: правка конфигов во время прогона
// на него не влияет.
type Session struct {
	RunID     string
	Username  string
	InputFile string
	App       config.AppConfig
	Parser    config.ParserConfig
	SaveDir   string
}

// Query параметры запроса для одной строки входного файла
func (s *Session) Query(item models.SearchItem) priceapi.Query {
	return priceapi.Query{
		Brand:       s.Parser.BrandAlias(strings.TrimSpace(item.Manufacturer)),
		Article:     processing.NormalizeArticle(item.Article),
		RegionCode:  s.Parser.RegionCode,
		RequestType: s.Parser.RequestType,
		Login:       s.Parser.Login,
		Password:    s.Parser.Password,
	}
}
