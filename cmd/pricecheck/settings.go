package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"pricecheck/internal/config"
)

func handleSettings(args []string) {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	delay := fs.Int("delay", 0, "задержка между запросами, секунды")
	savePath := fs.String("save-path", "", "каталог быстрого экспорта")
	fastExport := fs.Bool("fast-export", true, "сохранять результат автоматически")
	fs.Parse(args)

	c := mustContainer()
	defer c.Close()

	app := c.Store.App()
	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "delay":
			app.TimeDelay = *delay
		case "save-path":
			app.SavePath = *savePath
		case "fast-export":
			app.FastExport = config.FlagBool(*fastExport)
		}
	})

	if changed {
		if _, err := c.Store.SaveApp(app); err != nil {
			if !errors.Is(err, config.ErrPersist) {
				log.Fatalf("✗ Некорректные настройки: %v", err)
			}
			log.Printf("⚠ Настройки не записаны на диск: %v", err)
		}
	}

	printSettings(os.Stdout, c.Store.App(), c.Store.Parser(), c.Store.SaveDir())
}

func handleReset(args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	savePath := fs.Bool("save-path", false, "также сбросить каталог быстрого экспорта")
	fs.Parse(args)

	c := mustContainer()
	defer c.Close()

	if _, err := c.Store.ResetParser(); err != nil && !errors.Is(err, config.ErrPersist) {
		log.Fatalf("✗ Не удалось сбросить настройки: %v", err)
	}
	if *savePath {
		if _, err := c.Store.ResetSavePath(); err != nil && !errors.Is(err, config.ErrPersist) {
			log.Fatalf("✗ Не удалось сбросить путь сохранения: %v", err)
		}
	}
	log.Println("✓ Правила фильтрации сброшены")
	printSettings(os.Stdout, c.Store.App(), c.Store.Parser(), c.Store.SaveDir())
}

// printSettings текущие настройки пользователя
func printSettings(w io.Writer, app config.AppConfig, parser config.ParserConfig, saveDir string) {
	table := newTable(w, "Настройка", "Значение")
	table.Append([]string{"Каталог сохранения", saveDir})
	table.Append([]string{"Быстрый экспорт", onOff(bool(app.FastExport))})
	table.Append([]string{"Задержка, с", fmt.Sprint(app.TimeDelay)})
	table.Append([]string{"Регион", fmt.Sprint(parser.RegionCode)})
	table.Append([]string{"Тип запроса", fmt.Sprint(parser.RequestType)})
	table.Append([]string{"Срок поставки", limit(bool(parser.IsDeliveryDateLimit), parser.DeliveryDateLimit, "дн.")})
	table.Append([]string{"Только в наличии", onOff(bool(parser.OnlyInStock))})
	table.Append([]string{"Только с гарантией", onOff(bool(parser.OnlyWithGuarantee))})
	table.Append([]string{"Рейтинг магазина", limit(bool(parser.IsStoreRatingLimit), parser.StoreRatingLimit, "и выше")})
	table.Append([]string{"Черный список", fmt.Sprintf("%s (%d)", onOff(bool(parser.UseBlackList)), len(parser.BlackList))})
	table.Append([]string{"Белый список", fmt.Sprintf("%s (%d)", onOff(bool(parser.UseWhiteList)), len(parser.WhiteList))})
	table.Append([]string{"Замен брендов", fmt.Sprint(len(parser.BrandsList))})
	table.Render()
}

func onOff(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}

func limit(enabled bool, value int, unit string) string {
	if !enabled {
		return "без ограничения"
	}
	return fmt.Sprintf("%d %s", value, unit)
}
