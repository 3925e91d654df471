package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"pricecheck/internal/domain/models"
)

// dialogConfirm подтверждение отбрасывания неполных строк через диалог.
// Вызывается только из рабочих горутин: ждет ответа пользователя.
func dialogConfirm(window fyne.Window) models.ConfirmFunc {
	return func(dropped int) bool {
		answer := make(chan bool, 1)
		fyne.Do(func() {
			dialog.ShowConfirm("Неполные строки",
				fmt.Sprintf("В файле %d неполных строк. Отбросить их и продолжить?", dropped),
				func(ok bool) { answer <- ok },
				window)
		})
		return <-answer
	}
}

// chooseOpenFile выбор существующего xlsx или csv файла
func chooseOpenFile(window fyne.Window, onPath func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		onPath(path)
	}, window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx", ".xlsm", ".csv"}))
	fd.Show()
}

// chooseSaveFile выбор пути для сохранения xlsx; диалог открывается в dir
func chooseSaveFile(window fyne.Window, dir, name string, onPath func(path string)) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		// Файл пишет excelize, пустой файл диалога перезаписывается
		writer.Close()
		onPath(path)
	}, window)
	fd.SetFileName(name)
	if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
		fd.SetLocation(lister)
	}
	fd.Show()
}

// showErrorAsync показывает ошибку из рабочей горутины
func showErrorAsync(window fyne.Window, err error) {
	fyne.Do(func() { dialog.ShowError(err, window) })
}

// showInfoAsync показывает сообщение из рабочей горутины
func showInfoAsync(window fyne.Window, title, message string) {
	fyne.Do(func() { dialog.ShowInformation(title, message, window) })
}
