package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/metrics"
	"github.com/hamed0406/sitewatch/internal/monitor"
	"github.com/hamed0406/sitewatch/internal/probe"
	"github.com/hamed0406/sitewatch/internal/repo"
)

// Runner executes check cycles: one store load, a bounded pool of probes,
// one store save, then alert dispatch.
type Runner struct {
	Logger      *zap.Logger
	Sites       []domain.SiteConfig
	Store       repo.RecordStore
	Checker     probe.Checker
	Engine      *monitor.Engine
	Alerter     Alerter
	Concurrency int

	// one cycle at a time; the API may trigger a cycle while the loop runs
	mu sync.Mutex
}

// CycleResult is what one cycle produced.
type CycleResult struct {
	Records domain.Records      `json:"records"`
	Alerts  []domain.AlertEvent `json:"alerts"`
}

func NewRunner(
	logger *zap.Logger,
	sites []domain.SiteConfig,
	store repo.RecordStore,
	checker probe.Checker,
	engine *monitor.Engine,
	alerter Alerter,
	concurrency int,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if engine == nil {
		engine = monitor.NewEngine(logger)
	}
	return &Runner{
		Logger:      logger,
		Sites:       sites,
		Store:       store,
		Checker:     checker,
		Engine:      engine,
		Alerter:     alerter,
		Concurrency: concurrency,
	}
}

type outcome struct {
	rec   domain.SiteRecord
	alert *domain.AlertEvent
}

// RunOnce runs a single cycle. Corrupt prior state is logged and treated as
// empty; any other load error aborts before probing. A cancelled context
// aborts without saving, so shutdown never records spurious failures.
func (r *Runner) RunOnce(ctx context.Context) (CycleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	r.Logger.Info("check_cycle_started", zap.Int("sites", len(r.Sites)))

	prev, err := r.Store.Load(ctx)
	var corrupt *repo.CorruptionError
	switch {
	case errors.As(err, &corrupt):
		r.Logger.Warn("state_corrupt_starting_fresh", zap.String("source", corrupt.Source), zap.Error(corrupt.Err))
		prev = nil
	case err != nil:
		return CycleResult{}, fmt.Errorf("load state: %w", err)
	}
	if prev == nil {
		prev = make(domain.Records)
	}

	outcomes := make([]outcome, len(r.Sites))
	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	for i, s := range r.Sites {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, site domain.SiteConfig) {
			defer func() { <-sem }()
			defer wg.Done()

			var prior *domain.SiteRecord
			if p, ok := prev[site.Name]; ok {
				prior = &p
			}
			res := r.Checker.Probe(ctx, site)
			rec, alert := r.Engine.Update(prior, site, res)
			outcomes[i] = outcome{rec: rec, alert: alert}
		}(i, s)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		r.Logger.Warn("check_cycle_aborted", zap.Error(err))
		return CycleResult{}, err
	}

	// sites removed from config keep their record
	next := prev.Clone()
	var alerts []domain.AlertEvent
	for i, site := range r.Sites {
		o := outcomes[i]
		next[site.Name] = o.rec
		metrics.RecordCheck(site.Name, o.rec)
		r.logChecked(site, o.rec)
		if o.alert != nil {
			alerts = append(alerts, *o.alert)
		}
	}

	saveErr := r.Store.Save(ctx, next)
	if saveErr != nil {
		r.Logger.Error("state_save_failed", zap.Error(saveErr))
	}

	// Delivery never rolls back the records above.
	if r.Alerter != nil {
		for _, a := range alerts {
			r.Alerter.Dispatch(ctx, a)
		}
	}

	elapsed := time.Since(start)
	metrics.RecordCycle(elapsed)
	r.Logger.Info("check_cycle_finished",
		zap.Int("sites", len(r.Sites)),
		zap.Int("alerts", len(alerts)),
		zap.Duration("elapsed", elapsed),
	)

	result := CycleResult{Records: next, Alerts: alerts}
	if saveErr != nil {
		return result, fmt.Errorf("save state: %w", saveErr)
	}
	return result, nil
}

func (r *Runner) logChecked(site domain.SiteConfig, rec domain.SiteRecord) {
	fields := []zap.Field{
		zap.String("site", site.Name),
		zap.String("url", site.URL),
		zap.Bool("online", rec.Online),
		zap.Float64("uptime", rec.Uptime),
		zap.Bool("alert_sent", rec.AlertSent),
		zap.Stringer("ssl", rec.SSLDaysRemaining),
	}
	if rec.StatusCode != nil {
		fields = append(fields, zap.Int("status", *rec.StatusCode))
	}
	if rec.Latency != nil {
		fields = append(fields, zap.Int("latency_ms", *rec.Latency))
	}
	if rec.Error != nil {
		fields = append(fields, zap.String("error", *rec.Error))
	}
	r.Logger.Debug("site_checked", fields...)
}
