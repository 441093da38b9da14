// Package monitor decides, from a fresh probe result and the previous
// persisted record, what the new record is and whether a DOWN or BACK UP
// alert is due.
//
// The alert_sent flag is the only debounce state: it is set when a DOWN
// alert fires and cleared when the matching recovery alert fires, so one
// outage produces at most one DOWN and one BACK UP alert however many
// checks it spans.
package monitor

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// Update folds result into prior. prior is nil for a site never checked
// before. It does not touch any store.
func Update(prior *domain.SiteRecord, site domain.SiteConfig, result domain.ProbeResult, now time.Time) (domain.SiteRecord, *domain.AlertEvent) {
	var (
		total, successful int
		wasOnline         bool
		alertSentPrior    bool
		lastCheck         string
	)
	if prior == nil {
		// Unknown history counts as online, so a first failure alerts.
		total, successful = 0, 0
		wasOnline = true
		alertSentPrior = false
	} else {
		total, successful = prior.TotalChecks, prior.SuccessfulChecks
		wasOnline = prior.Online
		alertSentPrior = prior.AlertSent
		lastCheck = prior.LastCheck.String()
	}

	total++
	if result.Online {
		successful++
	}

	rec := domain.SiteRecord{
		Online:           result.Online,
		Latency:          result.LatencyMS,
		StatusCode:       result.StatusCode,
		SSLDaysRemaining: result.SSL,
		ContentValid:     result.ContentValid,
		LastCheck:        domain.NewTimestamp(now),
		TotalChecks:      total,
		SuccessfulChecks: successful,
		Uptime:           UptimePercent(successful, total),
		AlertSent:        alertSentPrior,
	}
	if result.Error != nil {
		msg := result.Error.Message
		rec.Error = &msg
	}

	switch {
	case !result.Online && wasOnline && !alertSentPrior:
		rec.AlertSent = true
		return rec, &domain.AlertEvent{
			Kind:       domain.AlertDown,
			Site:       site.Name,
			URL:        site.URL,
			Error:      downCause(result),
			LastOnline: lastCheck,
		}
	case result.Online && !wasOnline && alertSentPrior:
		rec.AlertSent = false
		return rec, &domain.AlertEvent{
			Kind:       domain.AlertUp,
			Site:       site.Name,
			URL:        site.URL,
			LatencyMS:  deref(result.LatencyMS),
			StatusCode: deref(result.StatusCode),
		}
	}
	return rec, nil
}

// UptimePercent is 100*successful/total rounded to two decimals.
func UptimePercent(successful, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(10000*float64(successful)/float64(total)) / 100
}

func downCause(result domain.ProbeResult) string {
	if result.Error != nil {
		return result.Error.Message
	}
	if result.StatusCode != nil {
		return fmt.Sprintf("HTTP %d", *result.StatusCode)
	}
	return ""
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Engine wraps Update with a clock and transition logging.
type Engine struct {
	Logger *zap.Logger
	Now    func() time.Time
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Logger: logger, Now: time.Now}
}

func (e *Engine) Update(prior *domain.SiteRecord, site domain.SiteConfig, result domain.ProbeResult) (domain.SiteRecord, *domain.AlertEvent) {
	rec, alert := Update(prior, site, result, e.Now())
	if alert != nil {
		e.Logger.Info("site_transition",
			zap.String("site", site.Name),
			zap.String("kind", string(alert.Kind)),
			zap.Bool("first_check", prior == nil),
			zap.Int("total_checks", rec.TotalChecks),
			zap.Float64("uptime", rec.Uptime),
		)
	}
	return rec, alert
}
