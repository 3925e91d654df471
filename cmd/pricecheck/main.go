package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/olekukonko/tablewriter"

	"pricecheck/internal/config"
	"pricecheck/internal/container"
	"pricecheck/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		handleRun(args)
	case "history":
		handleHistory(args)
	case "export":
		handleExport(args)
	case "list":
		handleList(args)
	case "settings":
		handleSettings(args)
	case "reset":
		handleReset(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Pricecheck - проценка запчастей по файлу артикулов")
	fmt.Println()
	fmt.Println("Usage: pricecheck <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run [--yes] [--out=dir] <file>          Запустить проценку по файлу (xlsx/csv)")
	fmt.Println("  history [--limit=N]                     Показать последние прогоны")
	fmt.Println("  export [--errors] [--out=dir] <run-id>  Повторно выгрузить результат прогона")
	fmt.Println("  list show <black|white>                 Показать список магазинов")
	fmt.Println("  list import [--yes] <black|white> <file>  Загрузить список из файла")
	fmt.Println("  list export [--out=dir] <black|white>   Выгрузить список в xlsx")
	fmt.Println("  settings [--delay=N] [--save-path=dir] [--fast-export=true|false]")
	fmt.Println("                                          Показать или изменить настройки")
	fmt.Println("  reset [--save-path]                     Сбросить правила фильтрации")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  PRICECHECK_API_KEYS    ключи API через запятую")
	fmt.Println("  PRICECHECK_USER        имя пользователя (каталог конфигов)")
	fmt.Println("  PRICECHECK_CONFIG_DIR  каталог конфигов (configs)")
	fmt.Println("  PRICECHECK_HISTORY_DB  база истории прогонов (history.db)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pricecheck run --yes parts.xlsx")
	fmt.Println("  pricecheck history --limit=5")
	fmt.Println("  pricecheck list import black blacklist.xlsx")
}

// mustContainer загружает конфигурацию и собирает зависимости или завершает процесс
func mustContainer() *container.Container {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	return c
}

// newTable таблица для вывода в терминал
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
