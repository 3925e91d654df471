package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecheck/importer"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/pipeline"
)

func TestFailureText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{pipeline.ErrNoAPIKeys, "Ключи API не заданы"},
		{pipeline.ErrCancelled, "Прогон отменен"},
		{fmt.Errorf("import a.xlsx: %w", importer.ErrHeaderMismatch), "Неверный формат файла: нужны колонки Производитель и Артикул"},
		{errors.New("disk full"), "Ошибка: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, failureText(tt.err))
		})
	}
}

func TestCompleteText(t *testing.T) {
	r := &pipeline.Result{
		Summary:    models.RunSummary{Total: 3, Succeeded: 2, Failed: 1},
		ExportPath: "/home/u/Desktop/Проценка товара от 05-Mar-2024 14-07-09.xlsx",
	}
	assert.Equal(t, "Готово: найдено 2, не найдено 1 из 3. Сохранено: Проценка товара от 05-Mar-2024 14-07-09.xlsx", completeText(r))

	r.ExportPath = ""
	assert.Equal(t, "Готово: найдено 2, не найдено 1 из 3", completeText(r))
}

func TestParseField(t *testing.T) {
	v, err := parseField("Задержка", " 5 ", 0, 3600)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = parseField("Рейтинг", "6", 1, 5)
	assert.EqualError(t, err, "Рейтинг: допустимо от 1 до 5")

	_, err = parseField("Регион", "0", 1, 0)
	assert.EqualError(t, err, "Регион: допустимо от 1")

	_, err = parseField("Регион", "abc", 1, 0)
	assert.Error(t, err)
}
