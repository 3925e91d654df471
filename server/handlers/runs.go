package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"pricecheck/internal/domain/models"
	"pricecheck/internal/logging"
	apperrors "pricecheck/server/errors"
	"pricecheck/server/services"
)

// RunHandler обработчики прогонов проценки
type RunHandler struct {
	runs   *services.RunService
	logger *slog.Logger
}

// NewRunHandler создает новый обработчик прогонов
func NewRunHandler(runs *services.RunService, logger *slog.Logger) *RunHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RunHandler{runs: runs, logger: logger}
}

// RunResultResponse таблица результата прогона
type RunResultResponse struct {
	Run   *models.RunSummary `json:"run"`
	Table *models.Table      `json:"table"`
}

// RunErrorsResponse ошибочные артикулы прогона
type RunErrorsResponse struct {
	Run    *models.RunSummary `json:"run"`
	Errors []models.ErrorRow  `json:"errors"`
}

// HandleStartRun запускает прогон по загруженному файлу
// @Summary Запустить проценку
// @Description Принимает файл с колонками Производитель/Артикул и запускает прогон
// @Tags runs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл проценки (.xlsx, .csv)"
// @Param drop_incomplete formData bool false "Отбросить неполные строки"
// @Success 202 {object} models.RunSummary "Прогон запущен"
// @Failure 400 {object} ErrorResponse "Неверный файл"
// @Failure 409 {object} ErrorResponse "Прогон уже выполняется"
// @Failure 503 {object} ErrorResponse "Не настроены ключи API"
// @Router /runs [post]
func (h *RunHandler) HandleStartRun(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		sendError(c, h.logger, apperrors.NewValidationError("не передан файл проценки (поле file)", err))
		return
	}
	dropIncomplete, _ := strconv.ParseBool(c.PostForm("drop_incomplete"))

	file, err := header.Open()
	if err != nil {
		sendError(c, h.logger, apperrors.NewValidationError("не удалось прочитать файл", err))
		return
	}
	defer file.Close()

	summary, err := h.runs.StartRun(c.Request.Context(), header.Filename, file, dropIncomplete)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusAccepted, summary)
}

// HandleListRuns возвращает последние прогоны
// @Summary Список прогонов
// @Tags runs
// @Produce json
// @Param limit query int false "Количество (по умолчанию 20, максимум 200)"
// @Success 200 {object} RunListResponse
// @Failure 500 {object} ErrorResponse "Внутренняя ошибка сервера"
// @Router /runs [get]
func (h *RunHandler) HandleListRuns(c *gin.Context) {
	runs, err := h.runs.ListRuns(c.Request.Context(), queryInt(c, "limit", 20, 200))
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, RunListResponse{Runs: runs, Count: len(runs)})
}

// HandleGetRun возвращает сводку прогона
// @Summary Состояние прогона
// @Tags runs
// @Produce json
// @Param id path string true "ID прогона"
// @Success 200 {object} models.RunSummary
// @Failure 404 {object} ErrorResponse "Прогон не найден"
// @Router /runs/{id} [get]
func (h *RunHandler) HandleGetRun(c *gin.Context) {
	summary, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, summary)
}

// HandleCancelRun отменяет активный прогон
// @Summary Отменить прогон
// @Tags runs
// @Produce json
// @Param id path string true "ID прогона"
// @Success 202 {object} models.RunSummary
// @Failure 404 {object} ErrorResponse "Прогон не найден"
// @Failure 409 {object} ErrorResponse "Прогон уже завершен"
// @Router /runs/{id}/cancel [post]
func (h *RunHandler) HandleCancelRun(c *gin.Context) {
	summary, err := h.runs.CancelRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusAccepted, summary)
}

// HandleRunResult отдает результат прогона: JSON или xlsx (format=xlsx)
// @Summary Результат прогона
// @Tags runs
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "ID прогона"
// @Param format query string false "json (по умолчанию) или xlsx"
// @Success 200 {object} RunResultResponse
// @Failure 404 {object} ErrorResponse "Прогон не найден"
// @Failure 409 {object} ErrorResponse "Прогон не завершен"
// @Router /runs/{id}/result [get]
func (h *RunHandler) HandleRunResult(c *gin.Context) {
	id := c.Param("id")
	if c.Query("format") == "xlsx" {
		h.sendExport(c, func(dir string) (string, error) {
			return h.runs.ExportResult(c.Request.Context(), id, dir)
		})
		return
	}

	summary, table, err := h.runs.Result(c.Request.Context(), id)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, RunResultResponse{Run: summary, Table: table})
}

// HandleRunErrors отдает ошибочные артикулы прогона: JSON или xlsx (format=xlsx)
// @Summary Ошибочные артикулы прогона
// @Tags runs
// @Produce json
// @Param id path string true "ID прогона"
// @Param format query string false "json (по умолчанию) или xlsx"
// @Success 200 {object} RunErrorsResponse
// @Failure 404 {object} ErrorResponse "Прогон не найден"
// @Failure 409 {object} ErrorResponse "Прогон не завершен"
// @Router /runs/{id}/errors [get]
func (h *RunHandler) HandleRunErrors(c *gin.Context) {
	id := c.Param("id")
	if c.Query("format") == "xlsx" {
		h.sendExport(c, func(dir string) (string, error) {
			return h.runs.ExportErrors(c.Request.Context(), id, dir)
		})
		return
	}

	summary, rows, err := h.runs.ErrorRows(c.Request.Context(), id)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	if rows == nil {
		rows = []models.ErrorRow{}
	}
	SendJSONResponse(c, http.StatusOK, RunErrorsResponse{Run: summary, Errors: rows})
}

// sendExport формирует файл во временном каталоге и отдает его вложением
func (h *RunHandler) sendExport(c *gin.Context, export func(dir string) (string, error)) {
	dir, err := os.MkdirTemp("", "pricecheck-export-*")
	if err != nil {
		sendError(c, h.logger, apperrors.NewInternalError("не удалось создать временный каталог", err))
		return
	}
	defer os.RemoveAll(dir)

	path, err := export(dir)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	sendFile(c, path, filepath.Base(path))
}
