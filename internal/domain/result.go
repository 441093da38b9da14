package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProbeErrorKind classifies a transport-level probe failure.
type ProbeErrorKind string

const (
	ErrKindTimeout    ProbeErrorKind = "timeout"
	ErrKindDNS        ProbeErrorKind = "dns"
	ErrKindRefused    ProbeErrorKind = "refused"
	ErrKindTLS        ProbeErrorKind = "tls"
	ErrKindInvalidURL ProbeErrorKind = "invalid_url"
	ErrKindTransport  ProbeErrorKind = "transport"
)

// ProbeError is a transport failure recorded against a probe. It never
// aborts a cycle; the site is simply observed as offline.
type ProbeError struct {
	Kind    ProbeErrorKind
	Message string
}

func (e *ProbeError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ProbeResult is the outcome of one check of one site.
type ProbeResult struct {
	Online       bool
	Error        *ProbeError
	LatencyMS    *int
	StatusCode   *int
	SSL          SSLExpiry
	ContentValid *bool
}

const sslErrorPrefix = "SSL Error: "

// SSLExpiry is either a day count until the leaf certificate expires, a
// certificate error, or not applicable (plain http, or never probed). The
// error variant holds its display text verbatim so a decoded record encodes
// back to the same bytes.
type SSLExpiry struct {
	days *int
	text *string
}

func SSLDays(n int) SSLExpiry { return SSLExpiry{days: &n} }

// SSLError builds the error variant as "SSL Error: <cause>".
func SSLError(cause string) SSLExpiry {
	if cause == "" {
		cause = "unknown error"
	}
	text := sslErrorPrefix + cause
	return SSLExpiry{text: &text}
}

func SSLNotApplicable() SSLExpiry { return SSLExpiry{} }

// Days reports the remaining day count, which is negative for an expired
// certificate. ok is false for the error and not-applicable variants.
func (s SSLExpiry) Days() (days int, ok bool) {
	if s.days == nil {
		return 0, false
	}
	return *s.days, true
}

// Err returns the certificate error cause without the "SSL Error: " prefix,
// or "" if there is none.
func (s SSLExpiry) Err() string {
	if s.text == nil {
		return ""
	}
	return strings.TrimPrefix(*s.text, sslErrorPrefix)
}

func (s SSLExpiry) IsError() bool { return s.text != nil }

func (s SSLExpiry) Applicable() bool { return s.days != nil || s.text != nil }

func (s SSLExpiry) String() string {
	switch {
	case s.days != nil:
		return fmt.Sprintf("%d days", *s.days)
	case s.text != nil:
		return *s.text
	default:
		return "n/a"
	}
}

func (s SSLExpiry) MarshalJSON() ([]byte, error) {
	switch {
	case s.days != nil:
		return json.Marshal(*s.days)
	case s.text != nil:
		return json.Marshal(*s.text)
	default:
		return []byte("null"), nil
	}
}

func (s *SSLExpiry) UnmarshalJSON(b []byte) error {
	*s = SSLExpiry{}
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var msg string
		if err := json.Unmarshal(b, &msg); err != nil {
			return fmt.Errorf("ssl_days_remaining: %w", err)
		}
		*s = SSLExpiry{text: &msg}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ssl_days_remaining: %w", err)
	}
	*s = SSLDays(n)
	return nil
}
