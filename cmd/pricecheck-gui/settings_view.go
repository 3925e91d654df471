package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pricecheck/internal/config"
)

var ratingOptions = []string{"1", "2", "3", "4", "5"}

// settingsView вкладка настроек приложения и правил фильтрации
type settingsView struct {
	window fyne.Window
	store  *config.Store

	savePath   *widget.Entry
	fastExport *widget.Check
	timeDelay  *widget.Entry

	regionCode    *widget.Entry
	requestType   *widget.Entry
	deliveryLimit *widget.Check
	deliveryDays  *widget.Entry
	onlyInStock   *widget.Check
	withGuarantee *widget.Check
	ratingLimit   *widget.Check
	rating        *widget.Select
	useBlackList  *widget.Check
	useWhiteList  *widget.Check
}

func newSettingsView(window fyne.Window, store *config.Store) *settingsView {
	v := &settingsView{
		window:        window,
		store:         store,
		savePath:      widget.NewEntry(),
		fastExport:    widget.NewCheck("Сохранять результат автоматически", nil),
		timeDelay:     widget.NewEntry(),
		regionCode:    widget.NewEntry(),
		requestType:   widget.NewEntry(),
		deliveryLimit: widget.NewCheck("Ограничить срок поставки", nil),
		deliveryDays:  widget.NewEntry(),
		onlyInStock:   widget.NewCheck("Только в наличии", nil),
		withGuarantee: widget.NewCheck("Только с гарантией", nil),
		ratingLimit:   widget.NewCheck("Ограничить рейтинг магазина", nil),
		rating:        widget.NewSelect(ratingOptions, nil),
		useBlackList:  widget.NewCheck("Исключать магазины черного списка", nil),
		useWhiteList:  widget.NewCheck("Только магазины белого списка", nil),
	}
	v.savePath.SetPlaceHolder(config.DefaultSaveDir())
	v.refresh()
	return v
}

func (v *settingsView) content() fyne.CanvasObject {
	browse := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			if dir != nil {
				v.savePath.SetText(dir.Path())
			}
		}, v.window)
	})

	form := widget.NewForm(
		widget.NewFormItem("Каталог сохранения", container.NewBorder(nil, nil, nil, browse, v.savePath)),
		widget.NewFormItem("", v.fastExport),
		widget.NewFormItem("Задержка, с", v.timeDelay),
		widget.NewFormItem("Регион", v.regionCode),
		widget.NewFormItem("Тип запроса", v.requestType),
		widget.NewFormItem("", v.deliveryLimit),
		widget.NewFormItem("Срок поставки, дн.", v.deliveryDays),
		widget.NewFormItem("", v.onlyInStock),
		widget.NewFormItem("", v.withGuarantee),
		widget.NewFormItem("", v.ratingLimit),
		widget.NewFormItem("Рейтинг от", v.rating),
		widget.NewFormItem("", v.useBlackList),
		widget.NewFormItem("", v.useWhiteList),
	)

	save := widget.NewButtonWithIcon("Сохранить", theme.DocumentSaveIcon(), v.save)
	reset := widget.NewButtonWithIcon("Сбросить фильтры", theme.ContentUndoIcon(), func() {
		dialog.ShowConfirm("Сброс", "Сбросить правила фильтрации? Списки и замены брендов сохранятся.", func(ok bool) {
			if !ok {
				return
			}
			if _, err := v.store.ResetParser(); err != nil {
				v.showSaveError(err)
			}
			v.refresh()
		}, v.window)
	})

	return container.NewVScroll(container.NewVBox(form, container.NewHBox(save, reset)))
}

// refresh заполняет форму текущими настройками
func (v *settingsView) refresh() {
	app := v.store.App()
	parser := v.store.Parser()

	v.savePath.SetText(app.SavePath)
	v.fastExport.SetChecked(bool(app.FastExport))
	v.timeDelay.SetText(strconv.Itoa(app.TimeDelay))

	v.regionCode.SetText(strconv.Itoa(parser.RegionCode))
	v.requestType.SetText(strconv.Itoa(parser.RequestType))
	v.deliveryLimit.SetChecked(bool(parser.IsDeliveryDateLimit))
	v.deliveryDays.SetText(strconv.Itoa(parser.DeliveryDateLimit))
	v.onlyInStock.SetChecked(bool(parser.OnlyInStock))
	v.withGuarantee.SetChecked(bool(parser.OnlyWithGuarantee))
	v.ratingLimit.SetChecked(bool(parser.IsStoreRatingLimit))
	v.rating.SetSelected(strconv.Itoa(parser.StoreRatingLimit))
	v.useBlackList.SetChecked(bool(parser.UseBlackList))
	v.useWhiteList.SetChecked(bool(parser.UseWhiteList))
}

func (v *settingsView) save() {
	app, parser, err := v.collect()
	if err != nil {
		dialog.ShowError(err, v.window)
		return
	}

	if _, err := v.store.SaveApp(app); err != nil {
		v.showSaveError(err)
		return
	}
	if _, err := v.store.SaveParser(parser); err != nil {
		v.showSaveError(err)
		return
	}
	dialog.ShowInformation("Настройки", "Настройки сохранены", v.window)
}

// collect читает форму поверх текущих настроек, чтобы не терять списки
func (v *settingsView) collect() (config.AppConfig, config.ParserConfig, error) {
	app := v.store.App()
	parser := v.store.Parser()

	var err error
	app.SavePath = strings.TrimSpace(v.savePath.Text)
	app.FastExport = config.FlagBool(v.fastExport.Checked)
	if app.TimeDelay, err = parseField("Задержка", v.timeDelay.Text, 0, 3600); err != nil {
		return app, parser, err
	}

	if parser.RegionCode, err = parseField("Регион", v.regionCode.Text, 1, 0); err != nil {
		return app, parser, err
	}
	if parser.RequestType, err = parseField("Тип запроса", v.requestType.Text, 1, 0); err != nil {
		return app, parser, err
	}
	if parser.DeliveryDateLimit, err = parseField("Срок поставки", v.deliveryDays.Text, 1, 365); err != nil {
		return app, parser, err
	}
	if parser.StoreRatingLimit, err = parseField("Рейтинг", v.rating.Selected, 1, 5); err != nil {
		return app, parser, err
	}
	parser.IsDeliveryDateLimit = config.FlagBool(v.deliveryLimit.Checked)
	parser.OnlyInStock = config.FlagBool(v.onlyInStock.Checked)
	parser.OnlyWithGuarantee = config.FlagBool(v.withGuarantee.Checked)
	parser.IsStoreRatingLimit = config.FlagBool(v.ratingLimit.Checked)
	parser.UseBlackList = config.FlagBool(v.useBlackList.Checked)
	parser.UseWhiteList = config.FlagBool(v.useWhiteList.Checked)

	return app, parser, nil
}

func (v *settingsView) showSaveError(err error) {
	if errors.Is(err, config.ErrPersist) {
		dialog.ShowInformation("Настройки", "Настройки применены, но не записаны на диск: "+err.Error(), v.window)
		return
	}
	dialog.ShowError(err, v.window)
}

// parseField разбирает целое поле формы; max 0 означает отсутствие верхней границы
func parseField(name, text string, min, max int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%s: нужно целое число", name)
	}
	if value < min || (max > 0 && value > max) {
		if max > 0 {
			return 0, fmt.Errorf("%s: допустимо от %d до %d", name, min, max)
		}
		return 0, fmt.Errorf("%s: допустимо от %d", name, min)
	}
	return value, nil
}
