package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"pricecheck/exporter"
	"pricecheck/importer"
	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
)

func handleList(args []string) {
	if len(args) < 1 {
		printListUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "show":
		handleListShow(args[1:])
	case "import":
		handleListImport(args[1:])
	case "export":
		handleListExport(args[1:])
	default:
		fmt.Printf("Unknown list command: %s\n\n", args[0])
		printListUsage()
		os.Exit(1)
	}
}

func printListUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pricecheck list show <black|white>")
	fmt.Println("  pricecheck list import [--yes] <black|white> <file>")
	fmt.Println("  pricecheck list export [--out=dir] <black|white>")
}

func handleListShow(args []string) {
	if len(args) != 1 {
		printListUsage()
		os.Exit(1)
	}
	kind := mustListKind(args[0])

	c := mustContainer()
	defer c.Close()

	pairs := listOf(c.Store.Parser(), kind)
	if len(pairs) == 0 {
		fmt.Println("Список пуст")
		return
	}
	table := newTable(os.Stdout, "Бренд", "Магазин")
	for _, p := range pairs {
		table.Append([]string{p.Brand(), p.Store()})
	}
	table.Render()
}

func handleListImport(args []string) {
	fs := flag.NewFlagSet("list import", flag.ExitOnError)
	yes := fs.Bool("yes", false, "отбрасывать неполные строки без подтверждения")
	fs.Parse(args)

	if fs.NArg() != 2 {
		printListUsage()
		os.Exit(1)
	}
	kind := mustListKind(fs.Arg(0))
	path := fs.Arg(1)

	confirm := promptConfirm(os.Stdin, os.Stdout)
	if *yes {
		confirm = models.AlwaysConfirm
	}

	pairs, err := importer.ImportListFile(path, confirm)
	if err != nil {
		log.Fatalf("✗ Не удалось загрузить %s: %v", filepath.Base(path), err)
	}

	c := mustContainer()
	defer c.Close()

	parser := c.Store.Parser()
	if kind == exporter.WhiteList {
		parser.WhiteList = pairs
	} else {
		parser.BlackList = pairs
	}
	if _, err := c.Store.SaveParser(parser); err != nil {
		if !errors.Is(err, config.ErrPersist) {
			log.Fatalf("✗ Не удалось сохранить настройки: %v", err)
		}
		log.Printf("⚠ Настройки не записаны на диск: %v", err)
	}
	log.Printf("✓ Загружено пар: %d", len(pairs))
}

func handleListExport(args []string) {
	fs := flag.NewFlagSet("list export", flag.ExitOnError)
	out := fs.String("out", "", "каталог для сохранения (по умолчанию из настроек)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		printListUsage()
		os.Exit(1)
	}
	kind := mustListKind(fs.Arg(0))

	c := mustContainer()
	defer c.Close()

	dir := *out
	if dir == "" {
		dir = c.Store.SaveDir()
	}
	path := filepath.Join(dir, exporter.ListFileName(kind, time.Now()))
	if err := exporter.ExportList(path, listOf(c.Store.Parser(), kind), models.AlwaysConfirm); err != nil {
		log.Fatalf("✗ Не удалось сохранить %s: %v", path, err)
	}
	log.Printf("✓ Список сохранен: %s", path)
}

// parseListKind разбирает имя списка: black/white или черный/белый
func parseListKind(name string) (exporter.ListKind, error) {
	switch name {
	case "black", "черный":
		return exporter.BlackList, nil
	case "white", "белый":
		return exporter.WhiteList, nil
	}
	return "", fmt.Errorf("unknown list %q (expected black or white)", name)
}

func mustListKind(name string) exporter.ListKind {
	kind, err := parseListKind(name)
	if err != nil {
		log.Fatal(err)
	}
	return kind
}

func listOf(parser config.ParserConfig, kind exporter.ListKind) []models.BrandStorePair {
	if kind == exporter.WhiteList {
		return parser.WhiteList
	}
	return parser.BlackList
}
