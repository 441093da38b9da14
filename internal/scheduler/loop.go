package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ParseSchedule accepts a Go duration ("5m") or a standard five-field cron
// expression ("*/5 * * * *").
func ParseSchedule(s string) (cron.Schedule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("schedule is required")
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return nil, fmt.Errorf("interval must be > 0")
		}
		return cron.Every(d), nil
	}
	sched, err := cron.ParseStandard(s)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", s, err)
	}
	return sched, nil
}

// Run does an immediate cycle, then one per schedule tick until ctx is
// cancelled. Cycle errors are logged; the loop keeps going.
func (r *Runner) Run(ctx context.Context, sched cron.Schedule) {
	r.runLogged(ctx)

	for {
		next := sched.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			r.Logger.Info("runner_stopped")
			return
		case <-timer.C:
			r.runLogged(ctx)
		}
	}
}

func (r *Runner) runLogged(ctx context.Context) {
	if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
		r.Logger.Warn("check_cycle_error", zap.Error(err))
	}
}
