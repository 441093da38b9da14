package scheduler

import (
	"context"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// Alerter delivers alert events; notify.Dispatcher is the production
// implementation. It reports delivery but must not fail the cycle.
type Alerter interface {
	Dispatch(ctx context.Context, ev domain.AlertEvent) bool
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(ctx context.Context, ev domain.AlertEvent) bool

func (f AlerterFunc) Dispatch(ctx context.Context, ev domain.AlertEvent) bool {
	return f(ctx, ev)
}
