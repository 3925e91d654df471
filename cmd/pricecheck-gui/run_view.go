package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pricecheck/exporter"
	appcontainer "pricecheck/internal/container"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/pipeline"
)

// runView вкладка запуска проценки: выбор файла, прогресс, отмена и
// ручное сохранение результата
type runView struct {
	window fyne.Window
	deps   *appcontainer.Container

	inputPath binding.String
	status    binding.String
	progress  binding.Float

	pickBtn   *widget.Button
	startBtn  *widget.Button
	cancelBtn *widget.Button
	saveBtn   *widget.Button

	// Изменяются только в потоке UI
	run    *pipeline.Run
	result *pipeline.Result
}

func newRunView(window fyne.Window, deps *appcontainer.Container) *runView {
	v := &runView{
		window:    window,
		deps:      deps,
		inputPath: binding.NewString(),
		status:    binding.NewString(),
		progress:  binding.NewFloat(),
	}
	v.status.Set("Выберите файл проценки")

	v.pickBtn = widget.NewButtonWithIcon("Выбрать файл", theme.FolderOpenIcon(), func() {
		chooseOpenFile(window, func(path string) {
			v.inputPath.Set(path)
			v.status.Set("Файл выбран: " + filepath.Base(path))
		})
	})
	v.startBtn = widget.NewButtonWithIcon("Запустить", theme.MediaPlayIcon(), v.start)
	v.cancelBtn = widget.NewButtonWithIcon("Отменить", theme.CancelIcon(), v.cancel)
	v.saveBtn = widget.NewButtonWithIcon("Сохранить результат", theme.DocumentSaveIcon(), v.saveResult)
	v.cancelBtn.Disable()
	v.saveBtn.Disable()

	if deps.KeyCount() == 0 {
		v.status.Set("Ключи API не заданы (PRICECHECK_API_KEYS), запуск невозможен")
	}
	return v
}

func (v *runView) content() fyne.CanvasObject {
	pathLabel := widget.NewLabelWithData(v.inputPath)
	pathLabel.Truncation = fyne.TextTruncateEllipsis

	return container.NewVBox(
		container.NewBorder(nil, nil, v.pickBtn, nil, pathLabel),
		widget.NewProgressBarWithData(v.progress),
		widget.NewLabelWithData(v.status),
		container.NewHBox(v.startBtn, v.cancelBtn, v.saveBtn),
	)
}

func (v *runView) start() {
	path, _ := v.inputPath.Get()
	v.setBusy(true)
	v.progress.Set(0)
	v.result = nil
	v.saveBtn.Disable()

	hooks := pipeline.Hooks{
		OnStateChange: func(state models.RunState) {
			fyne.Do(func() { v.onState(state) })
		},
		OnProgress: func(p pipeline.Progress) {
			fyne.Do(func() {
				v.progress.Set(float64(p.Percent) / 100)
				v.status.Set(progressText(p))
			})
		},
		OnComplete: func(r *pipeline.Result) {
			fyne.Do(func() { v.onComplete(r) })
		},
		OnErrorRows: func(rows []models.ErrorRow) {
			fyne.Do(func() { v.onErrorRows(rows) })
		},
		OnError: func(err error) {
			fyne.Do(func() {
				v.status.Set(failureText(err))
				dialog.ShowError(err, v.window)
			})
		},
	}

	// Подготовка может спросить подтверждение через диалог, поэтому Start
	// вызывается вне потока UI
	go func() {
		run, err := v.deps.Driver.Start(context.Background(), pipeline.Request{
			InputFile: path,
			Confirm:   dialogConfirm(v.window),
			Hooks:     hooks,
		})
		fyne.Do(func() {
			if err != nil {
				v.setBusy(false)
				v.status.Set(failureText(err))
				dialog.ShowError(err, v.window)
				return
			}
			if v.deps.Driver.Active() == run {
				v.run = run
			}
		})
	}()
}

func (v *runView) cancel() {
	if v.run != nil {
		v.status.Set("Отмена...")
		v.run.Cancel()
	}
}

func (v *runView) onState(state models.RunState) {
	switch state {
	case models.RunStatePreparing:
		v.status.Set("Подготовка...")
	case models.RunStateRunning:
		v.status.Set("Проценка...")
		v.cancelBtn.Enable()
	case models.RunStateIdle, models.RunStateCompleted, models.RunStateFailed:
		v.setBusy(false)
		v.run = nil
	}
}

func (v *runView) onComplete(r *pipeline.Result) {
	v.result = r
	v.progress.Set(1)
	v.saveBtn.Enable()
	v.status.Set(completeText(r))

	if r.ExportErr != nil {
		dialog.ShowError(fmt.Errorf("быстрый экспорт не выполнен: %w", r.ExportErr), v.window)
	}
}

// onErrorRows предлагает сохранить ошибочные артикулы, если их не сохранил
// быстрый экспорт
func (v *runView) onErrorRows(rows []models.ErrorRow) {
	if bool(v.deps.Store.App().FastExport) {
		return
	}
	dialog.ShowConfirm("Ошибочные артикулы",
		fmt.Sprintf("Не найдено артикулов: %d. Сохранить их список?", len(rows)),
		func(ok bool) {
			if !ok {
				return
			}
			chooseSaveFile(v.window, v.deps.Store.SaveDir(), exporter.ErrorsFileName(time.Now()), func(path string) {
				go func() {
					if err := exporter.ExportErrors(path, rows); err != nil {
						showErrorAsync(v.window, err)
						return
					}
					showInfoAsync(v.window, "Сохранено", path)
				}()
			})
		}, v.window)
}

func (v *runView) saveResult() {
	if v.result == nil {
		return
	}
	table := v.result.Table
	chooseSaveFile(v.window, v.deps.Store.SaveDir(), exporter.ResultFileName(time.Now()), func(path string) {
		go func() {
			if err := exporter.ExportResults(path, table, dialogConfirm(v.window)); err != nil {
				showErrorAsync(v.window, err)
				return
			}
			showInfoAsync(v.window, "Сохранено", path)
		}()
	})
}

func (v *runView) setBusy(busy bool) {
	if busy {
		v.pickBtn.Disable()
		v.startBtn.Disable()
		return
	}
	v.pickBtn.Enable()
	v.startBtn.Enable()
	v.cancelBtn.Disable()
}
