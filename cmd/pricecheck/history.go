package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"pricecheck/database"
	"pricecheck/exporter"
	"pricecheck/internal/domain/models"
)

func handleHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "количество прогонов")
	fs.Parse(args)

	c := mustContainer()
	defer c.Close()

	runs, err := c.History.ListRuns(context.Background(), c.Store.Username(), *limit)
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("История прогонов пуста")
		return
	}
	printRuns(os.Stdout, runs)
}

// printRuns таблица прогонов, новые сверху
func printRuns(w io.Writer, runs []models.RunSummary) {
	table := newTable(w, "ID", "Начало", "Файл", "Состояние", "Всего", "Найдено", "Ошибок", "Результат")
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(r.InputFile),
			string(r.State),
			fmt.Sprint(r.Total),
			fmt.Sprint(r.Succeeded),
			fmt.Sprint(r.Failed),
			orDash(r.ResultPath),
		})
	}
	table.Render()
}

func handleExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	errorsOnly := fs.Bool("errors", false, "выгрузить ошибочные артикулы вместо результата")
	out := fs.String("out", "", "каталог для сохранения (по умолчанию из настроек)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Println("Usage: pricecheck export [--errors] [--out=dir] <run-id>")
		os.Exit(1)
	}
	runID := fs.Arg(0)

	c := mustContainer()
	defer c.Close()
	ctx := context.Background()

	dir := *out
	if dir == "" {
		dir = c.Store.SaveDir()
	}

	run, err := c.History.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			log.Fatalf("Прогон %s не найден", runID)
		}
		log.Fatalf("Failed to load run: %v", err)
	}
	if run.State != models.RunStateCompleted {
		log.Fatalf("Прогон %s не завершен успешно (%s), выгружать нечего", runID, run.State)
	}
	now := time.Now()

	if *errorsOnly {
		rows, err := c.History.LoadErrorRows(ctx, runID)
		if err != nil {
			log.Fatalf("Failed to load error rows: %v", err)
		}
		if len(rows) == 0 {
			fmt.Println("В прогоне нет ошибочных артикулов")
			return
		}
		path := filepath.Join(dir, exporter.ErrorsFileName(now))
		if err := exporter.ExportErrors(path, rows); err != nil {
			log.Fatalf("✗ Не удалось сохранить %s: %v", path, err)
		}
		log.Printf("✓ Ошибочные артикулы сохранены: %s", path)
		return
	}

	table, err := c.History.LoadResultTable(ctx, runID)
	if err != nil {
		log.Fatalf("Failed to load result table: %v", err)
	}
	path := filepath.Join(dir, exporter.ResultFileName(now))
	if err := exporter.ExportResults(path, table, models.AlwaysConfirm); err != nil {
		log.Fatalf("✗ Не удалось сохранить %s: %v", path, err)
	}
	if err := c.History.UpdateResultPath(ctx, runID, path); err != nil {
		log.Printf("⚠ Путь результата не записан в историю: %v", err)
	}
	log.Printf("✓ Результат сохранен: %s", path)
}
