// Package metrics defines the Prometheus collectors for check cycles.
//
// Metric naming follows Prometheus conventions:
//   - sitewatch_ prefix for all metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// Registry holds every sitewatch collector plus the Go and process
// collectors. It is served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// ChecksTotal counts probes by site and outcome (up/down).
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitewatch_checks_total",
			Help: "Total number of site checks by site and result.",
		},
		[]string{"site", "result"},
	)

	// AlertsTotal counts emitted transitions by site and kind.
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitewatch_alerts_total",
			Help: "Total number of DOWN/UP alerts raised.",
		},
		[]string{"site", "kind"},
	)

	// AlertFailuresTotal counts notifier delivery failures.
	AlertFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitewatch_alert_failures_total",
			Help: "Total number of alert deliveries that failed.",
		},
		[]string{"notifier"},
	)

	SiteUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sitewatch_site_up",
			Help: "1 if the last check of the site was online, else 0.",
		},
		[]string{"site"},
	)

	SiteUptimePercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sitewatch_site_uptime_percent",
			Help: "Share of successful checks over the site's lifetime.",
		},
		[]string{"site"},
	)

	SSLDaysRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sitewatch_ssl_days_remaining",
			Help: "Days until the site's leaf certificate expires.",
		},
		[]string{"site"},
	)

	ProbeLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitewatch_probe_latency_seconds",
			Help:    "HTTP probe latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"site"},
	)

	CycleDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitewatch_cycle_duration_seconds",
			Help:    "Duration of a full check cycle in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ChecksTotal,
		AlertsTotal,
		AlertFailuresTotal,
		SiteUp,
		SiteUptimePercent,
		SSLDaysRemaining,
		ProbeLatencySeconds,
		CycleDurationSeconds,
	)
}

// RecordCheck updates the per-site series after a site's record is updated.
func RecordCheck(site string, rec domain.SiteRecord) {
	result, up := "down", 0.0
	if rec.Online {
		result, up = "up", 1
	}
	ChecksTotal.WithLabelValues(site, result).Inc()
	SiteUp.WithLabelValues(site).Set(up)
	SiteUptimePercent.WithLabelValues(site).Set(rec.Uptime)
	if rec.Latency != nil {
		ProbeLatencySeconds.WithLabelValues(site).Observe(float64(*rec.Latency) / 1000)
	}
	if days, ok := rec.SSLDaysRemaining.Days(); ok {
		SSLDaysRemaining.WithLabelValues(site).Set(float64(days))
	} else {
		SSLDaysRemaining.DeleteLabelValues(site)
	}
}

func RecordAlert(site string, kind domain.AlertKind) {
	AlertsTotal.WithLabelValues(site, string(kind)).Inc()
}

func RecordAlertFailure(notifier string) {
	AlertFailuresTotal.WithLabelValues(notifier).Inc()
}

func RecordCycle(d time.Duration) {
	CycleDurationSeconds.Observe(d.Seconds())
}
