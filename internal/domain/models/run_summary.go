package models

import (
	"time"
)

// RunState состояние прогона проценки
type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStatePreparing RunState = "preparing"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// IsTerminal сообщает, что прогон завершен (успешно или с ошибкой)
func (s RunState) IsTerminal() bool {
	return s == RunStateCompleted || s == RunStateFailed
}

// RunSummary сводная информация о прогоне для истории и API
type RunSummary struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	InputFile  string     `json:"input_file"`
	State      RunState   `json:"state"`
	Progress   int        `json:"progress"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	ResultPath string     `json:"result_path,omitempty"` // путь быстрого экспорта
	Error      string     `json:"error,omitempty"`
}

// Duration длительность прогона; для незавершенного прогона считается до now
func (s *RunSummary) Duration(now time.Time) time.Duration {
	if s.FinishedAt != nil {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}
