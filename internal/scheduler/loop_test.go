package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/repo/memory"
)

func TestParseSchedule(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 2, 0, 0, time.UTC)

	s, err := ParseSchedule("90s")
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if got := s.Next(base); !got.Equal(base.Add(90 * time.Second)) {
		t.Fatalf("duration next: %v", got)
	}

	s, err = ParseSchedule("*/5 * * * *")
	if err != nil {
		t.Fatalf("cron: %v", err)
	}
	if got := s.Next(base); !got.Equal(time.Date(2025, 1, 1, 10, 5, 0, 0, time.UTC)) {
		t.Fatalf("cron next: %v", got)
	}

	for _, bad := range []string{"", "-1m", "not a schedule"} {
		if _, err := ParseSchedule(bad); err == nil {
			t.Fatalf("want error for %q", bad)
		}
	}
}

func TestRunner_RunLoopStopsOnCancel(t *testing.T) {
	store := memory.New()
	chk := &scriptedChecker{online: map[string]bool{"shop": true}}
	r := NewRunner(zap.NewNop(), []domain.SiteConfig{{Name: "shop", URL: "https://shop.example"}},
		store, chk, nil, &memAlerter{}, 1)

	sched, err := ParseSchedule("1s")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, sched)
		close(done)
	}()

	// immediate pass
	deadline := time.Now().Add(2 * time.Second)
	for store.Saves() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.Saves() == 0 {
		t.Fatalf("expected the immediate cycle to save")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
