package pipeline

import (
	"context"
	"sync"

	"pricecheck/internal/domain/models"
)

// Run дескриптор запущенного прогона
type Run struct {
	ID string

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu      sync.RWMutex
	summary models.RunSummary
	result  *Result
	err     error
}

func newRun(id string, cancel context.CancelFunc, summary models.RunSummary) *Run {
	return &Run{
		ID:      id,
		cancel:  cancel,
		done:    make(chan struct{}),
		summary: summary,
	}
}

// Cancel просит рабочую горутину остановиться. Прогон завершится
// в состоянии Failed с ErrCancelled.
func (r *Run) Cancel() {
	r.cancel()
}

// Done закрывается после перехода прогона в конечное состояние
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait ждет завершения прогона
func (r *Run) Wait() (*Result, error) {
	<-r.done
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result, r.err
}

// Summary текущая сводка прогона
func (r *Run) Summary() models.RunSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary
}

func (r *Run) update(fn func(s *models.RunSummary)) models.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.summary)
	return r.summary
}

// finish фиксирует итог; повторные вызовы игнорируются
func (r *Run) finish(result *Result, err error) {
	r.once.Do(func() {
		r.mu.Lock()
		r.result = result
		r.err = err
		r.mu.Unlock()
		r.cancel()
		close(r.done)
	})
}
