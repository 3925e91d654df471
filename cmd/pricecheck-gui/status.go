package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"pricecheck/importer"
	"pricecheck/internal/pipeline"
)

func progressText(p pipeline.Progress) string {
	return fmt.Sprintf("Обработано %d из %d: %s", p.Done, p.Total, p.Article)
}

func completeText(r *pipeline.Result) string {
	s := r.Summary
	text := fmt.Sprintf("Готово: найдено %d, не найдено %d из %d", s.Succeeded, s.Failed, s.Total)
	if r.ExportPath != "" {
		text += ". Сохранено: " + filepath.Base(r.ExportPath)
	}
	return text
}

// failureText статус для ошибки подготовки или прогона
func failureText(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrNoAPIKeys):
		return "Ключи API не заданы"
	case errors.Is(err, pipeline.ErrNoInput):
		return "Выберите файл проценки"
	case errors.Is(err, pipeline.ErrBusy):
		return "Прогон уже выполняется"
	case errors.Is(err, pipeline.ErrCancelled):
		return "Прогон отменен"
	case errors.Is(err, importer.ErrHeaderMismatch):
		return "Неверный формат файла: нужны колонки Производитель и Артикул"
	case errors.Is(err, importer.ErrImportCancelled):
		return "Загрузка файла отменена"
	case errors.Is(err, importer.ErrNoData):
		return "В файле нет данных"
	}
	return "Ошибка: " + err.Error()
}
