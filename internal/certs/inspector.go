// Package certs reads the leaf certificate a host presents and reports how
// many days remain until it expires.
package certs

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/hamed0406/sitewatch/internal/domain"
)

const defaultPort = "443"

// Error is a certificate inspection failure for a host.
type Error struct {
	Host string
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

var (
	errNoCertificates = errors.New("no certificates returned")
	errNoExpiry       = errors.New("no expiry date")
)

// Inspector dials host:443 and reads the leaf certificate. The chain is not
// verified: an expired or self-signed certificate still yields its expiry.
type Inspector struct {
	Timeout time.Duration
	Port    string
	Now     func() time.Time
}

func NewInspector(timeout time.Duration) *Inspector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Inspector{Timeout: timeout, Port: defaultPort, Now: time.Now}
}

// Expiry returns the leaf certificate's NotAfter. Failures are *Error.
func (i *Inspector) Expiry(ctx context.Context, host string) (time.Time, error) {
	port := i.Port
	if port == "" {
		port = defaultPort
	}
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: i.Timeout},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true, //nolint:gosec // expiry must be readable from invalid chains
		},
	}
	ctx, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()

	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return time.Time{}, &Error{Host: host, Err: fmt.Errorf("tls dial %s: %w", host, err)}
	}
	defer conn.Close()

	tc, ok := conn.(*tls.Conn)
	if !ok {
		return time.Time{}, &Error{Host: host, Err: errNoCertificates}
	}
	certs := tc.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return time.Time{}, &Error{Host: host, Err: errNoCertificates}
	}
	// index 0 is the leaf
	if certs[0].NotAfter.IsZero() {
		return time.Time{}, &Error{Host: host, Err: errNoExpiry}
	}
	return certs[0].NotAfter, nil
}

// Inspect never fails: errors come back as the SSLExpiry error variant.
func (i *Inspector) Inspect(ctx context.Context, host string) domain.SSLExpiry {
	notAfter, err := i.Expiry(ctx, host)
	if err != nil {
		return domain.SSLError(err.Error())
	}
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	return domain.SSLDays(DaysRemaining(notAfter, now()))
}

// InspectURL inspects the host of an https URL and reports not applicable
// for any other scheme.
func (i *Inspector) InspectURL(ctx context.Context, rawURL string) domain.SSLExpiry {
	if !Applicable(rawURL) {
		return domain.SSLNotApplicable()
	}
	host := HostFromURL(rawURL)
	if host == "" {
		return domain.SSLError("no host in url")
	}
	return i.Inspect(ctx, host)
}

// DaysRemaining is floor((notAfter - now) / 24h); negative once expired.
func DaysRemaining(notAfter, now time.Time) int {
	d := notAfter.UTC().Sub(now.UTC())
	return int(math.Floor(d.Hours() / 24))
}

func Applicable(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	return err == nil && strings.EqualFold(u.Scheme, "https")
}

func HostFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}
