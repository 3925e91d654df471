package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pricecheck/exporter"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/pipeline"
)

func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	yes := fs.Bool("yes", false, "отбрасывать неполные строки без подтверждения")
	out := fs.String("out", "", "каталог для сохранения результата (помимо быстрого экспорта)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Println("Usage: pricecheck run [--yes] [--out=dir] <file>")
		os.Exit(1)
	}
	inputFile := fs.Arg(0)

	c := mustContainer()
	defer c.Close()

	confirm := promptConfirm(os.Stdin, os.Stdout)
	if *yes {
		confirm = models.AlwaysConfirm
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := c.Driver.Start(ctx, pipeline.Request{
		InputFile: inputFile,
		Confirm:   confirm,
		Hooks: pipeline.Hooks{
			OnProgress: func(p pipeline.Progress) {
				fmt.Printf("\r[%3d%%] %d/%d %-30s", p.Percent, p.Done, p.Total, p.Article)
			},
		},
	})
	if err != nil {
		log.Fatalf("✗ Прогон не запущен: %s", describeStartError(err))
	}
	log.Printf("Прогон %s запущен: %s", run.ID, filepath.Base(inputFile))

	result, err := run.Wait()
	fmt.Println()
	if err != nil {
		if errors.Is(err, pipeline.ErrCancelled) {
			log.Printf("Прогон %s отменен, результаты не сохранены", run.ID)
		} else {
			log.Printf("✗ Прогон %s завершился с ошибкой: %v", run.ID, err)
		}
		c.Close()
		os.Exit(1)
	}

	if *out != "" {
		resultPath, errorsPath, err := saveOutputs(*out, result, time.Now(), confirm)
		if resultPath != "" {
			log.Printf("✓ Результат сохранен: %s", resultPath)
		}
		if errorsPath != "" {
			log.Printf("✓ Ошибочные артикулы сохранены: %s", errorsPath)
			result.ErrorsExportPath = errorsPath
		}
		if err != nil {
			log.Printf("⚠ Не удалось сохранить в %s: %v", *out, err)
		}
	}
	if len(result.Errors) > 0 && result.ErrorsExportPath == "" {
		log.Printf("Ошибочные артикулы не выгружены: pricecheck export --errors %s", run.ID)
	}

	printRunResult(os.Stdout, result)
}

// saveOutputs пишет в dir таблицу результата и ошибочные артикулы.
// Пустые части пропускаются.
func saveOutputs(dir string, result *pipeline.Result, now time.Time, confirm models.ConfirmFunc) (resultPath, errorsPath string, err error) {
	if result.Table.Len() > 0 {
		resultPath = filepath.Join(dir, exporter.ResultFileName(now))
		if err := exporter.ExportResults(resultPath, result.Table, confirm); err != nil {
			return "", "", fmt.Errorf("save result: %w", err)
		}
	}
	if len(result.Errors) > 0 {
		errorsPath = filepath.Join(dir, exporter.ErrorsFileName(now))
		if err := exporter.ExportErrors(errorsPath, result.Errors); err != nil {
			return resultPath, "", fmt.Errorf("save error rows: %w", err)
		}
	}
	return resultPath, errorsPath, nil
}

// printRunResult сводка завершенного прогона
func printRunResult(w io.Writer, result *pipeline.Result) {
	s := result.Summary
	table := newTable(w, "Параметр", "Значение")
	table.Append([]string{"Прогон", s.ID})
	table.Append([]string{"Файл", s.InputFile})
	table.Append([]string{"Артикулов", fmt.Sprint(s.Total)})
	table.Append([]string{"Найдено", fmt.Sprint(s.Succeeded)})
	table.Append([]string{"Ошибочных", fmt.Sprint(s.Failed)})
	table.Append([]string{"Длительность", s.Duration(time.Now()).Round(time.Second).String()})
	table.Append([]string{"Результат", orDash(result.ExportPath)})
	if len(result.Errors) > 0 {
		table.Append([]string{"Ошибочные артикулы", orDash(result.ErrorsExportPath)})
	}
	if result.ExportErr != nil {
		table.Append([]string{"Ошибка экспорта", result.ExportErr.Error()})
	}
	table.Render()
}

// promptConfirm спрашивает в терминале, можно ли отбросить неполные строки
func promptConfirm(in io.Reader, out io.Writer) models.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(dropped int) bool {
		fmt.Fprintf(out, "В файле %d неполных строк. Отбросить их и продолжить? [y/N]: ", dropped)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		return isYes(line)
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

// describeStartError текст причины, по которой прогон не запустился
func describeStartError(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrNoAPIKeys):
		return "не заданы ключи API (PRICECHECK_API_KEYS)"
	case errors.Is(err, pipeline.ErrNoInput):
		return "не указан входной файл"
	case errors.Is(err, pipeline.ErrBusy):
		return "уже выполняется другой прогон"
	}
	return err.Error()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
