package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"pricecheck/server/middleware"
)

// ErrorResponse ответ об ошибке (для документации API)
type ErrorResponse = middleware.ErrorResponse

// RunListResponse список прогонов
type RunListResponse struct {
	Runs  interface{} `json:"runs"`
	Count int         `json:"count"`
}

// SendJSONResponse отправляет JSON ответ через Gin context
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendError отвечает ошибкой через общий обработчик middleware
func sendError(c *gin.Context, logger *slog.Logger, err error) {
	middleware.HandleGinError(c, logger, err)
}

// queryInt читает целый query-параметр с ограничением сверху
func queryInt(c *gin.Context, name string, def, max int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value <= 0 {
		return def
	}
	if value > max {
		return max
	}
	return value
}

// xlsxContentType MIME-тип выгрузок
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sendFile отдает xlsx вложением
func sendFile(c *gin.Context, path, name string) {
	c.Header("Content-Type", xlsxContentType)
	c.FileAttachment(path, name)
}
