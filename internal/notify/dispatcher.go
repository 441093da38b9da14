package notify

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/metrics"
)

// Dispatcher delivers alert events. Delivery is best effort: failures are
// logged and counted, never returned, so they cannot hold up persisting the
// state transition that produced the alert.
type Dispatcher struct {
	Notifier Notifier
	Logger   *zap.Logger
	Timeout  time.Duration
}

func NewDispatcher(n Notifier, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Notifier: n, Logger: logger, Timeout: 10 * time.Second}
}

// Dispatch reports whether every notifier accepted the alert.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.AlertEvent) bool {
	metrics.RecordAlert(ev.Site, ev.Kind)
	if d.Notifier == nil {
		d.Logger.Warn("alert_no_notifier", zap.String("site", ev.Site), zap.String("kind", string(ev.Kind)))
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	err := d.Notifier.Send(ctx, ev.Title(), ev.Body())
	if err == nil {
		d.Logger.Info("alert_sent",
			zap.String("site", ev.Site),
			zap.String("kind", string(ev.Kind)),
			zap.String("notifier", nameOf(d.Notifier)),
		)
		return true
	}

	for _, e := range multierr.Errors(err) {
		name := nameOf(d.Notifier)
		if de, ok := e.(*DispatchError); ok {
			name = de.Notifier
		}
		metrics.RecordAlertFailure(name)
		d.Logger.Error("alert_dispatch_failed",
			zap.String("site", ev.Site),
			zap.String("kind", string(ev.Kind)),
			zap.String("notifier", name),
			zap.Error(e),
		)
	}
	return false
}
