package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// requestIDKey ключ request ID в контексте
type requestIDKey struct{}

// New создает структурированный логгер.
// format "json" включает JSON handler, иначе используется текстовый.
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: ParseLevel(level) == slog.LevelDebug,
	}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard логгер, который ничего не пишет (для тестов и компонентов без логгера)
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// ParseLevel переводит DEBUG/INFO/WARN/ERROR в slog.Level; неизвестное значение дает INFO
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID кладет request ID в контекст
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, reqID)
}

// RequestID извлекает request ID из контекста
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	reqID, _ := ctx.Value(requestIDKey{}).(string)
	return reqID
}

// FromContext возвращает логгер, дополненный request ID из контекста
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if reqID := RequestID(ctx); reqID != "" {
		return logger.With("request_id", reqID)
	}
	return logger
}

// --- Специализированные функции логирования прогона проценки ---

// LogRunStart логирует начало прогона
func LogRunStart(logger *slog.Logger, runID, username, inputFile string, total int) {
	logger.Info("Run started",
		"run_id", runID,
		"username", username,
		"input_file", inputFile,
		"articles_total", total,
	)
}

// LogRunProgress логирует прогресс прогона
func LogRunProgress(logger *slog.Logger, runID string, processed, total int, article string) {
	logger.Debug("Run progress",
		"run_id", runID,
		"processed", processed,
		"total", total,
		"article", article,
	)
}

// LogRunComplete логирует завершение прогона
func LogRunComplete(logger *slog.Logger, runID string, succeeded, failed int, duration time.Duration) {
	logger.Info("Run completed",
		"run_id", runID,
		"succeeded", succeeded,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogRunPanic логирует панику в рабочей горутине прогона
func LogRunPanic(logger *slog.Logger, runID string, recovered interface{}, stack string) {
	logger.Error("Run panic",
		"run_id", runID,
		"recovered", recovered,
		"stack_trace", stack,
	)
}
