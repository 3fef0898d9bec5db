package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.SugaredLogger
}

func New(ctx context.Context, log *zap.SugaredLogger) *Runner {
	return &Runner{ctx: ctx, log: log}
}

func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				start := time.Now()
				if err := fn(r.ctx); err != nil {
					jobErrors.WithLabelValues(name).Inc()
					r.log.Warnw("фоновая задача завершилась с ошибкой", "job", name, "err", err)
				}
				jobRuns.WithLabelValues(name).Inc()
				jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			}
		}
	}()
}
