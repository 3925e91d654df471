package pipeline

import (
	"pricecheck/internal/domain/models"
)

// Progress состояние прогона после очередного артикула
type Progress struct {
	RunID     string `json:"run_id"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Article   string `json:"article"`
}

// Result итог завершенного прогона
type Result struct {
	Summary models.RunSummary
	Table   *models.Table
	Errors  []models.ErrorRow
	// ExportPath путь быстрого экспорта; пусто, если он выключен или не удался
	ExportPath       string
	ErrorsExportPath string
	// ExportErr ошибка быстрого экспорта; данные при этом сохраняются в Result
	ExportErr error
}

// Hooks наблюдатели прогона. Все вызовы, кроме смены состояния на этапе
// подготовки, приходят из рабочей горутины; UI должен сам переносить их
// в свой поток. Любой nil-наблюдатель пропускается.
type Hooks struct {
	OnStateChange func(state models.RunState)
	OnProgress    func(p Progress)
	OnComplete    func(r *Result)
	// OnErrorRows получает ошибочные артикулы, если они есть
	OnErrorRows func(rows []models.ErrorRow)
	OnError     func(err error)
}

func (h Hooks) stateChanged(state models.RunState) {
	if h.OnStateChange != nil {
		h.OnStateChange(state)
	}
}

func (h Hooks) progress(p Progress) {
	if h.OnProgress != nil {
		h.OnProgress(p)
	}
}

func (h Hooks) complete(r *Result) {
	if h.OnComplete != nil {
		h.OnComplete(r)
	}
}

func (h Hooks) errorRows(rows []models.ErrorRow) {
	if h.OnErrorRows != nil && len(rows) > 0 {
		h.OnErrorRows(rows)
	}
}

func (h Hooks) failed(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}
