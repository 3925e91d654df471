package main

import (
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pricecheck/exporter"
	"pricecheck/importer"
	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
)

// listsView вкладка черного и белого списков магазинов
type listsView struct {
	window fyne.Window
	store  *config.Store

	blackCount *widget.Label
	whiteCount *widget.Label
}

func newListsView(window fyne.Window, store *config.Store) *listsView {
	v := &listsView{
		window:     window,
		store:      store,
		blackCount: widget.NewLabel(""),
		whiteCount: widget.NewLabel(""),
	}
	v.refresh()
	return v
}

func (v *listsView) content() fyne.CanvasObject {
	return container.NewVBox(
		v.row("Черный список", exporter.BlackList, v.blackCount),
		widget.NewSeparator(),
		v.row("Белый список", exporter.WhiteList, v.whiteCount),
	)
}

func (v *listsView) row(title string, kind exporter.ListKind, count *widget.Label) fyne.CanvasObject {
	load := widget.NewButtonWithIcon("Загрузить", theme.UploadIcon(), func() {
		chooseOpenFile(v.window, func(path string) {
			go v.importList(kind, path)
		})
	})
	save := widget.NewButtonWithIcon("Выгрузить", theme.DownloadIcon(), func() {
		pairs := v.pairs(kind)
		if len(pairs) == 0 {
			dialog.ShowInformation(title, "Список пуст", v.window)
			return
		}
		chooseSaveFile(v.window, v.store.SaveDir(), exporter.ListFileName(kind, time.Now()), func(path string) {
			go func() {
				if err := exporter.ExportList(path, pairs, dialogConfirm(v.window)); err != nil {
					showErrorAsync(v.window, err)
					return
				}
				showInfoAsync(v.window, title, "Сохранено: "+path)
			}()
		})
	})
	return container.NewHBox(widget.NewLabel(title), count, load, save)
}

// importList заменяет список содержимым файла. Вызывается вне потока UI.
func (v *listsView) importList(kind exporter.ListKind, path string) {
	pairs, err := importer.ImportListFile(path, dialogConfirm(v.window))
	if err != nil {
		showErrorAsync(v.window, err)
		return
	}

	parser := v.store.Parser()
	if kind == exporter.WhiteList {
		parser.WhiteList = pairs
	} else {
		parser.BlackList = pairs
	}
	_, err = v.store.SaveParser(parser)

	fyne.Do(func() {
		v.refresh()
		if err != nil && !errors.Is(err, config.ErrPersist) {
			dialog.ShowError(err, v.window)
			return
		}
		dialog.ShowInformation("Списки", fmt.Sprintf("Загружено пар: %d", len(pairs)), v.window)
	})
}

func (v *listsView) pairs(kind exporter.ListKind) []models.BrandStorePair {
	parser := v.store.Parser()
	if kind == exporter.WhiteList {
		return parser.WhiteList
	}
	return parser.BlackList
}

func (v *listsView) refresh() {
	parser := v.store.Parser()
	v.blackCount.SetText(countText(len(parser.BlackList)))
	v.whiteCount.SetText(countText(len(parser.WhiteList)))
}

func countText(n int) string {
	return fmt.Sprintf("(%d)", n)
}
