package errors

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorConstructors(t *testing.T) {
	cause := io.ErrUnexpectedEOF

	tests := []struct {
		name    string
		err     *AppError
		code    int
		message string
	}{
		{"not found", NewNotFoundError("прогон не найден", cause), http.StatusNotFound, "прогон не найден"},
		{"validation", NewValidationError("неверный файл", cause), http.StatusBadRequest, "неверный файл"},
		{"conflict", NewConflictError("прогон уже запущен", cause), http.StatusConflict, "прогон уже запущен"},
		{"unavailable", NewServiceUnavailableError("нет ключей", cause), http.StatusServiceUnavailable, "нет ключей"},
		{"internal hides details", NewInternalError("db is down", cause), http.StatusInternalServerError, "Внутренняя ошибка сервера"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.StatusCode())
			assert.Equal(t, tt.message, tt.err.UserMessage())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestAppErrorOperation(t *testing.T) {
	err := NewNotFoundError("прогон не найден", io.EOF)
	assert.Empty(t, err.Operation())

	assert.Same(t, err, err.WithContext("GetRun"))
	assert.Equal(t, "GetRun", err.Operation())
	assert.Equal(t, "прогон не найден: EOF", err.Error())
}
