package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"pricecheck/internal/processing"
)

// brands бренды, которые реально встречаются в выдаче сервиса
var brands = []string{
	"Bosch", "Mann-Filter", "Febi Bilstein", "Lemforder", "Sachs", "NGK", "Denso",
	"Hyundai-Kia", "Toyota", "Nissan", "Mahle", "Valeo", "TRW", "Gates", "SKF",
}

// stores названия магазинов для черного и белого списков
var stores = []string{
	"АвтоТрейд", "Запчасти24", "Партс Маркет", "Автодок", "Motor Parts", "Эмекс Склад",
}

// Options параметры генерации
type Options struct {
	Rows       int
	Incomplete int  // строк без производителя или артикула
	List       bool // генерировать список (Бренд, Магазин) вместо файла проценки
	Seed       int64
}

func main() {
	rows := flag.Int("rows", 50, "количество строк")
	incomplete := flag.Int("incomplete", 0, "количество неполных строк")
	list := flag.Bool("list", false, "генерировать черный/белый список")
	seed := flag.Int64("seed", 0, "seed генератора (0 - случайный)")
	out := flag.String("out", "testdata/input.xlsx", "выходной файл (.xlsx или .csv в windows-1251)")
	flag.Parse()

	opts := Options{Rows: *rows, Incomplete: *incomplete, List: *list, Seed: *seed}
	header, data := Generate(opts)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	var err error
	switch strings.ToLower(filepath.Ext(*out)) {
	case ".csv":
		err = writeCSV(*out, header, data)
	case ".xlsx":
		err = writeXLSX(*out, header, data)
	default:
		log.Fatalf("Unsupported output format: %s", filepath.Ext(*out))
	}
	if err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("✓ Записано строк: %d (%d неполных) в %s", len(data), opts.Incomplete, *out)
}

// Generate строит заголовок и строки файла проценки или списка.
// Неполные строки вставляются в случайные позиции.
func Generate(opts Options) ([]string, [][]string) {
	faker := gofakeit.New(opts.Seed)

	header := processing.SearchColumns
	if opts.List {
		header = processing.ListColumns
	}

	data := make([][]string, 0, opts.Rows+opts.Incomplete)
	for i := 0; i < opts.Rows; i++ {
		brand := faker.RandomString(brands)
		if opts.List {
			data = append(data, []string{brand, faker.RandomString(stores)})
			continue
		}
		data = append(data, []string{brand, article(faker)})
	}

	for i := 0; i < opts.Incomplete; i++ {
		row := []string{faker.RandomString(brands), ""}
		if faker.Bool() {
			row = []string{"", article(faker)}
		}
		pos := faker.Number(0, len(data))
		data = append(data[:pos], append([][]string{row}, data[pos:]...)...)
	}

	return header, data
}

// article артикул в одном из распространенных форматов, в том числе с
// ведущими нулями и разделителями
func article(faker *gofakeit.Faker) string {
	switch faker.Number(0, 3) {
	case 0:
		return faker.Numerify("0 ### ### ###")
	case 1:
		return faker.Numerify("#####-#####")
	case 2:
		return strings.ToUpper(faker.Lexify("??")) + faker.Numerify("####")
	default:
		return faker.Numerify("0########")
	}
}

func writeXLSX(path string, header []string, data [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// Артикулы пишутся строками, чтобы сохранить ведущие нули
		values := []interface{}{row[0], row[1]}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// writeCSV пишет CSV с разделителем ";" в windows-1251, как его сохраняет Excel
func writeCSV(path string, header []string, data [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoded := transform.NewWriter(file, charmap.Windows1251.NewEncoder())
	w := csv.NewWriter(encoded)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(data); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := encoded.Close(); err != nil {
		return err
	}
	return file.Close()
}
