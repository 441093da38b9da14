package notify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/sitewatch/internal/domain"
)

type memNotifier struct {
	name   string
	err    error
	titles []string
}

func (m *memNotifier) Name() string { return m.name }

func (m *memNotifier) Send(ctx context.Context, title, text string) error {
	m.titles = append(m.titles, title)
	return m.err
}

var downEvent = domain.AlertEvent{Kind: domain.AlertDown, Site: "blog", URL: "https://blog.example", Error: "timeout"}

func TestDispatcher_Delivers(t *testing.T) {
	n := &memNotifier{name: "mem"}
	d := NewDispatcher(n, zap.NewNop())
	if !d.Dispatch(context.Background(), downEvent) {
		t.Fatalf("want delivered")
	}
	if len(n.titles) != 1 || n.titles[0] != "⚠️ blog is DOWN" {
		t.Fatalf("titles: %v", n.titles)
	}
}

func TestDispatcher_FailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bad := &memNotifier{name: "bad", err: errors.New("boom")}
	good := &memNotifier{name: "good"}
	d := NewDispatcher(Multi{bad, good}, zap.New(core))

	if d.Dispatch(context.Background(), downEvent) {
		t.Fatalf("want not fully delivered")
	}
	if len(good.titles) != 1 {
		t.Fatalf("one failing notifier must not block the others")
	}
	entries := logs.FilterMessage("alert_dispatch_failed").All()
	if len(entries) != 1 || entries[0].ContextMap()["notifier"] != "bad" {
		t.Fatalf("want one failure log for bad, got %v", logs.All())
	}
}

func TestMulti_CombinesErrors(t *testing.T) {
	m := Multi{
		&memNotifier{name: "a", err: errors.New("a down")},
		nil,
		&memNotifier{name: "b", err: errors.New("b down")},
	}
	err := m.Send(context.Background(), "t", "x")
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("want 2 errors, got %v", err)
	}
	var de *DispatchError
	if !errors.As(errs[1], &de) || de.Notifier != "b" {
		t.Fatalf("want DispatchError for b, got %v", errs[1])
	}
}

func TestDispatcher_NoNotifier(t *testing.T) {
	d := NewDispatcher(nil, nil)
	if d.Dispatch(context.Background(), downEvent) {
		t.Fatalf("want false without notifier")
	}
}
