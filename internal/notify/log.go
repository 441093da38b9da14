package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log writes alerts to the logger instead of an external channel. Used for
// dry runs.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Name() string { return "log" }

func (l Log) Send(_ context.Context, title, text string) error {
	l.Logger.Info("alert_dry_run", zap.String("title", title), zap.String("text", text))
	return nil
}
