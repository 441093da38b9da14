package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hamed0406/sitewatch/internal/domain"
)

func TestPrintTable_SortedWithStatus(t *testing.T) {
	lat := 120
	errText := "connection refused"
	recs := domain.Records{
		"zeta":  {Online: true, Latency: &lat, Uptime: 99.5, SSLDaysRemaining: domain.SSLDays(12)},
		"alpha": {Online: false, Error: &errText, Uptime: 50, SSLDaysRemaining: domain.SSLNotApplicable()},
	}
	var buf bytes.Buffer
	printTable(&buf, recs)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "alpha") || !strings.Contains(lines[1], "DOWN") || !strings.Contains(lines[1], errText) {
		t.Fatalf("row 1: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "zeta") || !strings.Contains(lines[2], "UP") || !strings.Contains(lines[2], "120ms") || !strings.Contains(lines[2], "12 days") {
		t.Fatalf("row 2: %q", lines[2])
	}
}
