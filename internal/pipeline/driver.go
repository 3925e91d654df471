package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"pricecheck/exporter"
	"pricecheck/importer"
	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/logging"
	"pricecheck/internal/processing"
)

// Options зависимости драйвера
type Options struct {
	Store   *config.Store
	Client  APIClient
	History HistoryRecorder // может быть nil
	Logger  *slog.Logger
	// Now источник времени для имен файлов и сводки
	Now func() time.Time
}

// Request параметры запуска прогона
type Request struct {
	// InputFile путь к файлу проценки; не нужен, если Items уже загружены
	InputFile string
	Items     []models.SearchItem
	// Confirm спрашивает, можно ли отбросить неполные строки входного файла
	Confirm models.ConfirmFunc
	// Parser настройки, которые нужно сохранить перед запуском; nil означает текущие
	Parser *config.ParserConfig
	Hooks  Hooks
}

// Driver конечный автомат прогонов проценки:
// Idle -> Preparing -> Running -> Completed | Failed.
// Одновременно активен не более одного прогона.
type Driver struct {
	store   *config.Store
	client  APIClient
	history HistoryRecorder
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	state  models.RunState
	active *Run
	last   *Run
}

// NewDriver создает драйвер
func NewDriver(opts Options) (*Driver, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("config store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Driver{
		store:   opts.Store,
		client:  opts.Client,
		history: opts.History,
		logger:  opts.Logger.With("component", "pipeline"),
		now:     opts.Now,
		state:   models.RunStateIdle,
	}, nil
}

// State текущее состояние драйвера
func (d *Driver) State() models.RunState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Active активный прогон или nil
func (d *Driver) Active() *Run {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Last последний запущенный прогон (в том числе завершенный) или nil
func (d *Driver) Last() *Run {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Start готовит прогон и запускает рабочую горутину.
// Ошибка подготовки возвращает драйвер в Idle и сообщает причину; после
// успешного Start все дальнейшие события приходят через req.Hooks.
// ctx ограничивает весь прогон.
func (d *Driver) Start(ctx context.Context, req Request) (*Run, error) {
	d.mu.Lock()
	if d.state == models.RunStatePreparing || d.state == models.RunStateRunning {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.state = models.RunStatePreparing
	d.mu.Unlock()
	req.Hooks.stateChanged(models.RunStatePreparing)

	session, items, err := d.prepare(req)
	if err != nil {
		d.setState(models.RunStateIdle, nil)
		req.Hooks.stateChanged(models.RunStateIdle)
		d.logger.Warn("Run preparation aborted", "input_file", req.InputFile, "error", err)
		return nil, err
	}

	// ответы предыдущих прогонов не переиспользуются
	if r, ok := d.client.(cacheResetter); ok {
		r.ResetCache()
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := newRun(session.RunID, cancel, models.RunSummary{
		ID:        session.RunID,
		Username:  session.Username,
		InputFile: session.InputFile,
		State:     models.RunStateRunning,
		StartedAt: d.now(),
		Total:     len(items),
	})

	d.mu.Lock()
	d.state = models.RunStateRunning
	d.active = run
	d.last = run
	d.mu.Unlock()
	req.Hooks.stateChanged(models.RunStateRunning)

	logging.LogRunStart(d.logger, session.RunID, session.Username, session.InputFile, len(items))
	go d.work(runCtx, run, session, items, req.Hooks)

	return run, nil
}

// prepare проверяет ключи и входные данные, сохраняет настройки парсера
// и собирает снимок сессии
func (d *Driver) prepare(req Request) (*Session, []models.SearchItem, error) {
	if d.client == nil || d.client.KeyCount() == 0 {
		return nil, nil, ErrNoAPIKeys
	}

	items := req.Items
	if items == nil {
		if req.InputFile == "" {
			return nil, nil, ErrNoInput
		}
		imported, err := importer.ImportSearchFile(req.InputFile, req.Confirm)
		if err != nil {
			return nil, nil, fmt.Errorf("import %s: %w", filepath.Base(req.InputFile), err)
		}
		items = imported
	}
	if len(items) == 0 {
		return nil, nil, importer.ErrNoData
	}

	parser := d.store.Parser()
	if req.Parser != nil {
		parser = req.Parser.Clone()
	}
	if _, err := d.store.SaveParser(parser); err != nil {
		if !errors.Is(err, config.ErrPersist) {
			return nil, nil, err
		}
		d.logger.Warn("Parser config not persisted, using in-memory copy", "error", err)
	}

	return &Session{
		RunID:     uuid.New().String(),
		Username:  d.store.Username(),
		InputFile: req.InputFile,
		App:       d.store.App(),
		Parser:    d.store.Parser(),
		SaveDir:   d.store.SaveDir(),
	}, items, nil
}

// work обрабатывает артикулы по порядку входного файла.
// Паника и отмена перехватываются здесь и переводят прогон в Failed.
func (d *Driver) work(ctx context.Context, run *Run, session *Session, items []models.SearchItem, hooks Hooks) {
	var (
		rows      [][]string
		errorRows []models.ErrorRow
	)

	defer func() {
		if r := recover(); r != nil {
			logging.LogRunPanic(d.logger, run.ID, r, string(debug.Stack()))
			d.failSafely(run, fmt.Errorf("%w: %v", ErrPanic, r), hooks)
		}
	}()

	throttle := newPacer(time.Duration(session.App.TimeDelay) * time.Second)
	total := len(items)

	for i, item := range items {
		query := session.Query(item)
		resp := d.client.Request(ctx, query)
		if ctx.Err() != nil {
			d.fail(run, cancelError(ctx.Err()), hooks)
			return
		}

		if resp == nil {
			errorRows = append(errorRows, models.ErrorRow{Manufacturer: query.Brand, Article: query.Article})
		} else {
			offers := processing.Top(processing.Filter(resp.Offers, session.Parser), processing.MaxOffers)
			rows = append(rows, processing.BuildRow(resp.Summary(query.Brand, query.Article), offers))
		}

		done := i + 1
		percent := min(99, done*100/total)
		summary := run.update(func(s *models.RunSummary) {
			s.Progress = percent
			s.Succeeded = len(rows)
			s.Failed = len(errorRows)
		})
		logging.LogRunProgress(d.logger, run.ID, done, total, query.Article)
		hooks.progress(Progress{
			RunID:     run.ID,
			Done:      done,
			Total:     total,
			Percent:   percent,
			Succeeded: summary.Succeeded,
			Failed:    summary.Failed,
			Article:   query.Article,
		})

		if done < total {
			if err := throttle.pause(ctx); err != nil {
				d.fail(run, cancelError(err), hooks)
				return
			}
		}
	}

	d.complete(ctx, run, session, rows, errorRows, hooks)
}

// complete собирает таблицу, выполняет быстрый экспорт и пишет историю
func (d *Driver) complete(ctx context.Context, run *Run, session *Session, rows [][]string, errorRows []models.ErrorRow, hooks Hooks) {
	table := processing.CompactTable(rows)
	finishedAt := d.now()

	result := &Result{Table: table, Errors: errorRows}

	if session.App.FastExport {
		result.ExportPath, result.ErrorsExportPath, result.ExportErr = d.fastExport(session, table, errorRows, finishedAt)
		if result.ExportErr != nil {
			d.logger.Error("Fast export failed", "run_id", run.ID, "save_dir", session.SaveDir, "error", result.ExportErr)
		}
	}

	result.Summary = run.update(func(s *models.RunSummary) {
		s.State = models.RunStateCompleted
		s.Progress = 100
		s.FinishedAt = &finishedAt
		s.ResultPath = result.ExportPath
		if result.ExportErr != nil {
			s.Error = result.ExportErr.Error()
		}
	})

	d.record(ctx, result.Summary, table, errorRows)
	logging.LogRunComplete(d.logger, run.ID, len(rows), len(errorRows), result.Summary.Duration(finishedAt))

	d.setState(models.RunStateCompleted, run)
	hooks.stateChanged(models.RunStateCompleted)
	hooks.progress(Progress{
		RunID:     run.ID,
		Done:      result.Summary.Total,
		Total:     result.Summary.Total,
		Percent:   100,
		Succeeded: len(rows),
		Failed:    len(errorRows),
	})
	hooks.complete(result)
	hooks.errorRows(errorRows)

	run.finish(result, nil)
}

// fastExport пишет результат (и ошибочные артикулы, если есть) в каталог сохранения
func (d *Driver) fastExport(session *Session, table *models.Table, errorRows []models.ErrorRow, now time.Time) (string, string, error) {
	var resultPath, errorsPath string

	if table.Len() > 0 {
		resultPath = filepath.Join(session.SaveDir, exporter.ResultFileName(now))
		if err := exporter.ExportResults(resultPath, table, models.AlwaysConfirm); err != nil {
			return "", "", fmt.Errorf("export results: %w", err)
		}
		d.logger.Info("Results exported", "path", resultPath, "rows", table.Len())
	}

	if len(errorRows) > 0 {
		errorsPath = filepath.Join(session.SaveDir, exporter.ErrorsFileName(now))
		if err := exporter.ExportErrors(errorsPath, errorRows); err != nil {
			return resultPath, "", fmt.Errorf("export error rows: %w", err)
		}
		d.logger.Info("Error rows exported", "path", errorsPath, "rows", len(errorRows))
	}

	return resultPath, errorsPath, nil
}

// fail переводит прогон в Failed; накопленные строки отбрасываются
func (d *Driver) fail(run *Run, err error, hooks Hooks) {
	defer run.finish(nil, err)

	finishedAt := d.now()
	summary := run.update(func(s *models.RunSummary) {
		s.State = models.RunStateFailed
		s.FinishedAt = &finishedAt
		s.Error = err.Error()
	})

	if errors.Is(err, ErrCancelled) {
		d.logger.Warn("Run cancelled", "run_id", run.ID, "processed", summary.Succeeded+summary.Failed, "total", summary.Total)
	} else {
		d.logger.Error("Run failed", "run_id", run.ID, "error", err)
	}

	// Контекст прогона уже может быть отменен, историю пишем независимо от него
	d.record(context.Background(), summary, nil, nil)

	d.setState(models.RunStateFailed, run)
	hooks.stateChanged(models.RunStateFailed)
	hooks.failed(err)
}

// failSafely вызывается из recover: паника наблюдателя здесь уже не
// должна выходить за пределы рабочей горутины
func (d *Driver) failSafely(run *Run, err error, hooks Hooks) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Observer panicked while reporting failure", "run_id", run.ID, "recovered", r)
		}
	}()
	d.fail(run, err, hooks)
}

func (d *Driver) record(ctx context.Context, summary models.RunSummary, table *models.Table, errorRows []models.ErrorRow) {
	if d.history == nil {
		return
	}
	if err := d.history.SaveRun(context.WithoutCancel(ctx), summary, table, errorRows); err != nil {
		d.logger.Error("Failed to record run history", "run_id", summary.ID, "error", err)
	}
}

func (d *Driver) setState(state models.RunState, finished *Run) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
	if finished != nil && d.active == finished {
		d.active = nil
	}
}

func cancelError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return err
}
