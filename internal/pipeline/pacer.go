package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer выдерживает фиксированную паузу после ответа API.
// Пауза отсчитывается от момента вызова pause и не зависит от того,
// сколько длился сам запрос.
type pacer struct {
	delay time.Duration
}

func newPacer(delay time.Duration) pacer {
	return pacer{delay: delay}
}

// pause ждет delay или отмены ctx; нулевая задержка не ждет
func (p pacer) pause(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	// новый ограничитель с опустошенным бакетом: следующий токен ровно через delay
	limiter := rate.NewLimiter(rate.Every(p.delay), 1)
	limiter.Allow()
	if err := limiter.Wait(ctx); err != nil {
		// Wait отказывает сразу, если дедлайн ctx наступит раньше паузы
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}
