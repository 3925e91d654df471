package config

import (
	"bytes"
	"encoding/json"
	"strings"

	"pricecheck/internal/domain/models"
)

// FlagBool булево значение, которое хранится в конфиге строкой "True"/"False".
// Формат унаследован от старых версий приложения и должен сохраняться.
type FlagBool bool

// MarshalJSON пишет "True" или "False"
func (b FlagBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte(`"True"`), nil
	}
	return []byte(`"False"`), nil
}

// UnmarshalJSON принимает "True"/"False" в любом регистре, JSON-булево, 0/1.
// Нераспознанное значение трактуется как False.
func (b *FlagBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*b = FlagBool(v)
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		*b = FlagBool(s == "true" || s == "1" || s == "yes")
	case float64:
		*b = FlagBool(v == 1)
	default:
		*b = false
	}
	return nil
}

// AppConfig настройки приложения (appConfig.json)
type AppConfig struct {
	SavePath   string   `json:"savePath"`
	FastExport FlagBool `json:"fastExport"`
	TimeDelay  int      `json:"timeDelay" validate:"min=0,max=3600"` // секунды между запросами
}

// DefaultAppConfig настройки приложения по умолчанию
func DefaultAppConfig() AppConfig {
	return AppConfig{
		SavePath:   "",
		FastExport: true,
		TimeDelay:  5,
	}
}

// ParserConfig настройки парсера (parserConfig.json)
type ParserConfig struct {
	RegionCode          int                     `json:"regionCode" validate:"min=1"`
	RequestType         int                     `json:"requestType" validate:"min=1"`
	Login               string                  `json:"login"`
	Password            string                  `json:"password"`
	IsDeliveryDateLimit FlagBool                `json:"isDeliveryDateLimit"`
	DeliveryDateLimit   int                     `json:"deliveryDateLimit" validate:"min=1,max=365"`
	OnlyInStock         FlagBool                `json:"onlyInStock"`
	OnlyWithGuarantee   FlagBool                `json:"onlyWithGuarantee"`
	IsStoreRatingLimit  FlagBool                `json:"isStoreRatingLimit"`
	StoreRatingLimit    int                     `json:"storeRatingLimit" validate:"min=1,max=5"`
	UseBlackList        FlagBool                `json:"useBlackList"`
	UseWhiteList        FlagBool                `json:"useWhiteList"`
	BrandsList          map[string]string       `json:"brandsList"`
	BlackList           []models.BrandStorePair `json:"blackList"`
	WhiteList           []models.BrandStorePair `json:"whiteList"`
}

// DefaultParserConfig настройки парсера по умолчанию
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		RegionCode:        1,
		RequestType:       5,
		DeliveryDateLimit: 1,
		StoreRatingLimit:  1,
		BrandsList:        map[string]string{},
		BlackList:         []models.BrandStorePair{},
		WhiteList:         []models.BrandStorePair{},
	}
}

// Clone возвращает глубокую копию конфига
func (c ParserConfig) Clone() ParserConfig {
	out := c
	out.BrandsList = make(map[string]string, len(c.BrandsList))
	for k, v := range c.BrandsList {
		out.BrandsList[k] = v
	}
	out.BlackList = append([]models.BrandStorePair{}, c.BlackList...)
	out.WhiteList = append([]models.BrandStorePair{}, c.WhiteList...)
	return out
}

// BrandAlias возвращает каноническое написание бренда для API.
// Бренд без настроенной замены возвращается без изменений.
func (c ParserConfig) BrandAlias(brand string) string {
	if alias, ok := c.BrandsList[brand]; ok && strings.TrimSpace(alias) != "" {
		return alias
	}
	return brand
}

// WithDefaultRules возвращает копию, в которой флаги и лимиты фильтрации сброшены
// к значениям по умолчанию; списки брендов и магазинов сохраняются.
func (c ParserConfig) WithDefaultRules() ParserConfig {
	def := DefaultParserConfig()
	out := c.Clone()
	out.IsDeliveryDateLimit = def.IsDeliveryDateLimit
	out.DeliveryDateLimit = def.DeliveryDateLimit
	out.OnlyInStock = def.OnlyInStock
	out.OnlyWithGuarantee = def.OnlyWithGuarantee
	out.IsStoreRatingLimit = def.IsStoreRatingLimit
	out.StoreRatingLimit = def.StoreRatingLimit
	out.UseBlackList = def.UseBlackList
	out.UseWhiteList = def.UseWhiteList
	return out
}

// normalize заменяет nil-коллекции пустыми, чтобы в файл писались {} и []
func (c *ParserConfig) normalize() {
	if c.BrandsList == nil {
		c.BrandsList = map[string]string{}
	}
	if c.BlackList == nil {
		c.BlackList = []models.BrandStorePair{}
	}
	if c.WhiteList == nil {
		c.WhiteList = []models.BrandStorePair{}
	}
}
