package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pricecheck/database"
	"pricecheck/exporter"
	"pricecheck/importer"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/logging"
	"pricecheck/internal/pipeline"
	apperrors "pricecheck/server/errors"
)

// HistoryStore история прогонов, из которой API отдает результаты
type HistoryStore interface {
	pipeline.HistoryRecorder
	GetRun(ctx context.Context, id string) (*models.RunSummary, error)
	ListRuns(ctx context.Context, username string, limit int) ([]models.RunSummary, error)
	LoadResultTable(ctx context.Context, id string) (*models.Table, error)
	LoadErrorRows(ctx context.Context, id string) ([]models.ErrorRow, error)
}

// RunService сервис запуска прогонов проценки и выдачи их результатов
type RunService struct {
	driver    *pipeline.Driver
	history   HistoryStore
	username  string
	uploadDir string
	logger    *slog.Logger
}

// NewRunService создает новый сервис прогонов
func NewRunService(driver *pipeline.Driver, history HistoryStore, username, uploadDir string, logger *slog.Logger) *RunService {
	if logger == nil {
		logger = logging.Discard()
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &RunService{
		driver:    driver,
		history:   history,
		username:  username,
		uploadDir: uploadDir,
		logger:    logger.With("component", "run_service"),
	}
}

// StartRun принимает загруженный файл проценки и запускает прогон.
// Файл разбирается сразу и удаляется; дальше прогон живет независимо от
// HTTP-запроса. Неполные строки отбрасываются только при dropIncomplete.
func (s *RunService) StartRun(ctx context.Context, filename string, content io.Reader, dropIncomplete bool) (*models.RunSummary, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm", ".csv", ".txt":
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("неподдерживаемый формат файла: %q", ext), importer.ErrUnsupportedFormat)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, apperrors.NewInternalError("не удалось создать каталог загрузок", err)
	}
	path := filepath.Join(s.uploadDir, uuid.New().String()+ext)
	if err := saveUpload(path, content); err != nil {
		return nil, apperrors.NewInternalError("не удалось сохранить загруженный файл", err)
	}
	defer os.Remove(path)

	var confirm models.ConfirmFunc
	if dropIncomplete {
		confirm = models.AlwaysConfirm
	}
	items, err := importer.ImportSearchFile(path, confirm)
	if err != nil {
		return nil, mapRunError("StartRun", err)
	}

	run, err := s.driver.Start(context.Background(), pipeline.Request{
		InputFile: filepath.Base(filename),
		Items:     items,
	})
	if err != nil {
		return nil, mapRunError("StartRun", err)
	}

	logging.FromContext(ctx, s.logger).Info("Run accepted", "run_id", run.ID, "file", filename, "articles", len(items))
	summary := run.Summary()
	return &summary, nil
}

// GetRun сводка прогона: активного из памяти, завершенного из истории
func (s *RunService) GetRun(ctx context.Context, id string) (*models.RunSummary, error) {
	if run := s.driver.Active(); run != nil && run.ID == id {
		summary := run.Summary()
		return &summary, nil
	}

	summary, err := s.history.GetRun(ctx, id)
	if err != nil {
		return nil, mapRunError("GetRun", err)
	}
	return summary, nil
}

// ListRuns последние прогоны пользователя; активный прогон идет первым
func (s *RunService) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	runs, err := s.history.ListRuns(ctx, s.username, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось загрузить историю прогонов", err).WithContext("ListRuns")
	}

	if active := s.driver.Active(); active != nil {
		for _, r := range runs {
			if r.ID == active.ID {
				return runs, nil
			}
		}
		runs = append([]models.RunSummary{active.Summary()}, runs...)
		if limit > 0 && len(runs) > limit {
			runs = runs[:limit]
		}
	}
	return runs, nil
}

// CancelRun отменяет активный прогон
func (s *RunService) CancelRun(ctx context.Context, id string) (*models.RunSummary, error) {
	if run := s.driver.Active(); run != nil && run.ID == id {
		run.Cancel()
		logging.FromContext(ctx, s.logger).Info("Run cancel requested", "run_id", id)
		summary := run.Summary()
		return &summary, nil
	}

	if _, err := s.history.GetRun(ctx, id); err != nil {
		return nil, mapRunError("CancelRun", err)
	}
	return nil, apperrors.NewConflictError("прогон уже завершен", nil)
}

// Result таблица результата завершенного прогона
func (s *RunService) Result(ctx context.Context, id string) (*models.RunSummary, *models.Table, error) {
	summary, err := s.finishedRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	table, err := s.history.LoadResultTable(ctx, id)
	if err != nil {
		return nil, nil, mapRunError("Result", err)
	}
	return summary, table, nil
}

// ErrorRows ошибочные артикулы завершенного прогона
func (s *RunService) ErrorRows(ctx context.Context, id string) (*models.RunSummary, []models.ErrorRow, error) {
	summary, err := s.finishedRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.history.LoadErrorRows(ctx, id)
	if err != nil {
		return nil, nil, mapRunError("ErrorRows", err)
	}
	return summary, rows, nil
}

// ExportResult пишет xlsx результата прогона в dir и возвращает путь
func (s *RunService) ExportResult(ctx context.Context, id, dir string) (string, error) {
	summary, table, err := s.Result(ctx, id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, exporter.ResultFileName(finishedAt(summary)))
	if err := exporter.ExportResults(path, table, models.AlwaysConfirm); err != nil {
		return "", mapExportError("ExportResult", err)
	}
	return path, nil
}

// ExportErrors пишет xlsx ошибочных артикулов прогона в dir и возвращает путь
func (s *RunService) ExportErrors(ctx context.Context, id, dir string) (string, error) {
	summary, rows, err := s.ErrorRows(ctx, id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, exporter.ErrorsFileName(finishedAt(summary)))
	if err := exporter.ExportErrors(path, rows); err != nil {
		return "", mapExportError("ExportErrors", err)
	}
	return path, nil
}

// finishedRun возвращает сводку успешно завершенного прогона
func (s *RunService) finishedRun(ctx context.Context, id string) (*models.RunSummary, error) {
	summary, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	switch summary.State {
	case models.RunStateCompleted:
		return summary, nil
	case models.RunStateFailed:
		return nil, apperrors.NewConflictError("прогон завершился ошибкой, результата нет", errors.New(summary.Error))
	default:
		return nil, apperrors.NewConflictError("прогон еще выполняется", nil)
	}
}

func finishedAt(summary *models.RunSummary) time.Time {
	if summary.FinishedAt != nil {
		return *summary.FinishedAt
	}
	return summary.StartedAt
}

func saveUpload(path string, content io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// mapRunError переводит ошибки прогона и истории в AppError операции op
func mapRunError(op string, err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		appErr = apperrors.NewConflictError("прогон уже выполняется", err)
	case errors.Is(err, pipeline.ErrNoAPIKeys):
		appErr = apperrors.NewServiceUnavailableError("не настроены ключи API", err)
	case errors.Is(err, importer.ErrHeaderMismatch):
		appErr = apperrors.NewValidationError("заголовок файла должен быть: Производитель, Артикул", err)
	case errors.Is(err, importer.ErrImportCancelled):
		appErr = apperrors.NewValidationError("в файле есть неполные строки; повторите запрос с drop_incomplete=true", err)
	case errors.Is(err, importer.ErrNoData):
		appErr = apperrors.NewValidationError("в файле нет данных для проценки", err)
	case errors.Is(err, importer.ErrUnsupportedFormat):
		appErr = apperrors.NewValidationError("неподдерживаемый формат файла", err)
	case errors.Is(err, database.ErrRunNotFound):
		appErr = apperrors.NewNotFoundError("прогон не найден", err)
	default:
		appErr = apperrors.NewInternalError("ошибка обработки прогона", err)
	}
	return appErr.WithContext(op)
}

func mapExportError(op string, err error) error {
	if errors.Is(err, exporter.ErrNoData) {
		return apperrors.NewNotFoundError("нет данных для выгрузки", err).WithContext(op)
	}
	return apperrors.NewInternalError("не удалось сформировать файл", err).WithContext(op)
}
