package domain

import (
	"fmt"
	"strings"
)

type AlertKind string

const (
	AlertDown AlertKind = "down"
	AlertUp   AlertKind = "up"
)

// AlertEvent is a state transition worth notifying about. Down events carry
// the failure cause and the previous check time; Up events carry the
// recovering response's latency and status code.
type AlertEvent struct {
	Kind AlertKind `json:"kind"`
	Site string    `json:"site"`
	URL  string    `json:"url"`

	Error      string `json:"error,omitempty"`
	LastOnline string `json:"last_online,omitempty"`

	LatencyMS  int `json:"latency_ms,omitempty"`
	StatusCode int `json:"status_code,omitempty"`
}

func (e AlertEvent) Title() string {
	if e.Kind == AlertUp {
		return fmt.Sprintf("✅ %s is BACK UP", e.Site)
	}
	return fmt.Sprintf("⚠️ %s is DOWN", e.Site)
}

func (e AlertEvent) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", e.URL)
	if e.Kind == AlertUp {
		fmt.Fprintf(&b, "Response Time: %dms\n", e.LatencyMS)
		fmt.Fprintf(&b, "Status Code: %d", e.StatusCode)
		return b.String()
	}
	cause := e.Error
	if cause == "" {
		cause = "Unknown error"
	}
	last := e.LastOnline
	if last == "" {
		last = "Never"
	}
	fmt.Fprintf(&b, "Error: %s\n", cause)
	fmt.Fprintf(&b, "Last Online: %s", last)
	return b.String()
}

// Message is the full alert text as delivered to chat channels.
func (e AlertEvent) Message() string {
	return e.Title() + "\n" + e.Body()
}
