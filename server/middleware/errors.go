package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPError интерфейс для ошибок с HTTP статусом и сообщением
type HTTPError interface {
	error
	StatusCode() int
	UserMessage() string
	Unwrap() error
}

// operationError ошибка, знающая имя операции, в которой возникла
type operationError interface {
	Operation() string
}

// ErrorResponse структура ответа об ошибке
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleGinError отвечает JSON-ошибкой и логирует её.
// Ошибки, реализующие HTTPError, отдают свой статус и сообщение;
// остальные превращаются в 500 без подробностей для клиента.
func HandleGinError(c *gin.Context, logger *slog.Logger, err error) {
	reqID := GetRequestIDFromGin(c)

	statusCode := http.StatusInternalServerError
	message := "Внутренняя ошибка сервера"

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		statusCode = httpErr.StatusCode()
		message = httpErr.UserMessage()
	}

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []any{
		"error", err,
		"status_code", statusCode,
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	var opErr operationError
	if errors.As(err, &opErr) && opErr.Operation() != "" {
		attrs = append(attrs, "operation", opErr.Operation())
	}
	logger.Log(c.Request.Context(), level, "HTTP error", attrs...)

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}
