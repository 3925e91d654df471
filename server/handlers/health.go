package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pricecheck/server/monitoring"
)

// HealthHandler обработчик проверки здоровья
type HealthHandler struct {
	checker *monitoring.HealthChecker
}

// NewHealthHandler создает новый обработчик проверки здоровья
func NewHealthHandler(checker *monitoring.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth возвращает состояние компонентов
// @Summary Проверка здоровья
// @Tags system
// @Produce json
// @Success 200 {object} monitoring.HealthCheckResult
// @Failure 503 {object} monitoring.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result := h.checker.Check(ctx)

	statusCode := http.StatusOK
	if result.Status == monitoring.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	SendJSONResponse(c, statusCode, result)
}
