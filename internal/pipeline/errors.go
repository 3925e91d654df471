package pipeline

import "errors"

var (
	// ErrBusy у драйвера уже есть активный прогон
	ErrBusy = errors.New("run already in progress")
	// ErrNoAPIKeys не настроены ключи API
	ErrNoAPIKeys = errors.New("api keys are not configured")
	// ErrNoInput не выбран входной файл
	ErrNoInput = errors.New("input file is not selected")
	// ErrCancelled прогон отменен
	ErrCancelled = errors.New("run cancelled")
	// ErrPanic в рабочей горутине произошла паника
	ErrPanic = errors.New("run panicked")
)
