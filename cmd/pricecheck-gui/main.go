package main

import (
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"pricecheck/internal/config"
	appcontainer "pricecheck/internal/container"
	"pricecheck/internal/logging"
)

func main() {
	log.Println("Запуск Pricecheck...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Ошибка загрузки конфигурации: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	deps, err := appcontainer.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("✗ Ошибка инициализации: %v", err)
	}
	defer deps.Close()

	application := app.NewWithID("pricecheck")
	window := application.NewWindow("Проценка запчастей")
	window.Resize(fyne.NewSize(720, 480))
	window.SetMaster()

	runs := newRunView(window, deps)
	settings := newSettingsView(window, deps.Store)
	lists := newListsView(window, deps.Store)

	tabs := container.NewAppTabs(
		container.NewTabItem("Проценка", runs.content()),
		container.NewTabItem("Настройки", settings.content()),
		container.NewTabItem("Списки", lists.content()),
	)
	tabs.OnSelected = func(*container.TabItem) {
		settings.refresh()
		lists.refresh()
	}

	window.SetCloseIntercept(func() {
		if run := deps.Driver.Active(); run != nil {
			log.Printf("Отмена прогона %s перед выходом", run.ID)
			run.Cancel()
			<-run.Done()
		}
		window.Close()
	})

	window.SetContent(tabs)
	window.ShowAndRun()
	log.Println("Pricecheck завершен")
}
