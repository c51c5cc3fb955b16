package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Task is a unit of deferred work run on a fixed interval.
type Task func(ctx context.Context) error

// Runner executes a named task periodically until the context is cancelled.
// Task errors are logged and do not stop the loop.
type Runner struct {
	Interval time.Duration
	Logger   *slog.Logger
}

func (r Runner) Run(ctx context.Context, name string, task Task) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := task(ctx); err != nil && r.Logger != nil {
				r.Logger.Warn("scheduled task failed", "task", name, "error", err)
			}
		}
	}
}
