package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the persisted last_check format, always UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// SiteConfig is one monitored website as supplied by configuration.
type SiteConfig struct {
	Name           string `json:"name" yaml:"name"`
	URL            string `json:"url" yaml:"url"`
	ValidationText string `json:"validation_text,omitempty" yaml:"validation_text,omitempty"`
}

// SiteRecord is the persisted health record of a single site. It is
// replaced wholesale once per check cycle.
type SiteRecord struct {
	Online           bool      `json:"online"`
	Error            *string   `json:"error"`
	Latency          *int      `json:"latency"`
	StatusCode       *int      `json:"status_code"`
	SSLDaysRemaining SSLExpiry `json:"ssl_days_remaining"`
	ContentValid     *bool     `json:"content_valid"`
	LastCheck        Timestamp `json:"last_check"`
	TotalChecks      int       `json:"total_checks"`
	SuccessfulChecks int       `json:"successful_checks"`
	Uptime           float64   `json:"uptime"`
	AlertSent        bool      `json:"alert_sent"`
}

// Records maps site name to its record. It is the unit the state store
// loads and saves.
type Records map[string]SiteRecord

// Clone returns a shallow copy of the mapping.
func (r Records) Clone() Records {
	out := make(Records, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Timestamp is a UTC time serialized as "YYYY-MM-DD HH:MM:SS".
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("last_check: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("last_check: %w", err)
	}
	t.Time = parsed
	return nil
}
