package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Spok95/telegram-homework-bot/internal/config"
	"github.com/Spok95/telegram-homework-bot/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
}

func New(ctx context.Context) *Runner { return &Runner{ctx: ctx} }

// Every — запускает fn раз в interval. Если предыдущий запуск ещё не
// завершился, очередной тик пропускается, а не ставится в очередь.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	var running atomic.Bool
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				if !running.CompareAndSwap(false, true) {
					jobSkipped.WithLabelValues(name).Inc()
					continue
				}
				r.run(name, fn)
				running.Store(false)
			}
		}
	}()
}

// DailyAt — запускает fn раз в сутки в локальное время at. После срабатывания
// спит до следующего дня, поэтому перекрытие запусков невозможно по построению.
func (r *Runner) DailyAt(at config.DayTime, loc *time.Location, name string, fn Job) {
	go func() {
		for {
			now := time.Now().In(loc)
			next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, loc)
			if !next.After(now) {
				next = next.Add(24 * time.Hour)
			}
			select {
			case <-r.ctx.Done():
				return
			case <-time.After(next.Sub(now)):
				r.run(name, fn)
			}
		}
	}()
}

func (r *Runner) run(name string, fn Job) {
	defer func() {
		if rec := recover(); rec != nil {
			jobErrors.WithLabelValues(name).Inc()
			observability.CaptureErr(fmt.Errorf("panic in job %s: %v", name, rec))
		}
	}()
	start := time.Now()
	if err := fn(r.ctx); err != nil {
		jobErrors.WithLabelValues(name).Inc()
		observability.CaptureErr(fmt.Errorf("job %s: %w", name, err))
	}
	jobRuns.WithLabelValues(name).Inc()
	jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
