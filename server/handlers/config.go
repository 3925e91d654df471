package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pricecheck/internal/config"
	"pricecheck/internal/logging"
	apperrors "pricecheck/server/errors"
	"pricecheck/server/services"
)

// ConfigHandler обработчик пользовательских настроек
type ConfigHandler struct {
	configs *services.ConfigService
	logger  *slog.Logger
}

// NewConfigHandler создает новый обработчик настроек
func NewConfigHandler(configs *services.ConfigService, logger *slog.Logger) *ConfigHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ConfigHandler{configs: configs, logger: logger}
}

// HandleGetParser возвращает настройки парсера
// @Summary Настройки парсера
// @Tags config
// @Produce json
// @Success 200 {object} config.ParserConfig
// @Router /config/parser [get]
func (h *ConfigHandler) HandleGetParser(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.configs.Parser())
}

// HandleUpdateParser заменяет настройки парсера
// @Summary Изменить настройки парсера
// @Description Булевы поля принимаются как "True"/"False"
// @Tags config
// @Accept json
// @Produce json
// @Param config body config.ParserConfig true "Настройки парсера"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Некорректные настройки"
// @Router /config/parser [put]
func (h *ConfigHandler) HandleUpdateParser(c *gin.Context) {
	cfg := config.DefaultParserConfig()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		sendError(c, h.logger, apperrors.NewValidationError("некорректный JSON настроек", err))
		return
	}

	update, err := h.configs.UpdateParser(cfg)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, update)
}

// HandleResetParser сбрасывает правила фильтрации к значениям по умолчанию
// @Summary Сбросить правила фильтрации
// @Tags config
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /config/parser/reset [post]
func (h *ConfigHandler) HandleResetParser(c *gin.Context) {
	update, err := h.configs.ResetParser()
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, update)
}

// HandleGetApp возвращает настройки приложения
// @Summary Настройки приложения
// @Tags config
// @Produce json
// @Success 200 {object} config.AppConfig
// @Router /config/app [get]
func (h *ConfigHandler) HandleGetApp(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.configs.App())
}

// HandleUpdateApp заменяет настройки приложения
// @Summary Изменить настройки приложения
// @Tags config
// @Accept json
// @Produce json
// @Param config body config.AppConfig true "Настройки приложения"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Некорректные настройки"
// @Router /config/app [put]
func (h *ConfigHandler) HandleUpdateApp(c *gin.Context) {
	cfg := config.DefaultAppConfig()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		sendError(c, h.logger, apperrors.NewValidationError("некорректный JSON настроек", err))
		return
	}

	update, err := h.configs.UpdateApp(cfg)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, update)
}
