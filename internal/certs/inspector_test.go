package certs

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func selfSigned(t *testing.T, notBefore, notAfter time.Time) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "expired.test"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("cert: %v", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func startTLS(t *testing.T, cert *tls.Certificate) (host, port string) {
	t.Helper()
	s := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	if cert != nil {
		s.TLS = &tls.Config{Certificates: []tls.Certificate{*cert}}
	}
	s.StartTLS()
	t.Cleanup(s.Close)
	h, p, err := net.SplitHostPort(s.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	return h, p
}

func TestInspect_ExpiredCertificateIsNegative(t *testing.T) {
	now := time.Now()
	cert := selfSigned(t, now.Add(-60*24*time.Hour), now.Add(-10*24*time.Hour))
	host, port := startTLS(t, &cert)

	in := NewInspector(2 * time.Second)
	in.Port = port
	got := in.Inspect(context.Background(), host)

	days, ok := got.Days()
	if !ok {
		t.Fatalf("want day count, got %s", got)
	}
	if days >= 0 {
		t.Fatalf("want negative days for expired cert, got %d", days)
	}
	if days != -10 && days != -11 {
		t.Fatalf("want about -10 days, got %d", days)
	}
}

func TestInspect_ValidCertificate(t *testing.T) {
	host, port := startTLS(t, nil)

	in := NewInspector(2 * time.Second)
	in.Port = port
	got := in.Inspect(context.Background(), host)
	if days, ok := got.Days(); !ok || days <= 0 {
		t.Fatalf("want positive days, got %s", got)
	}
}

func TestInspect_ConnectionRefusedIsErrorVariant(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	in := NewInspector(time.Second)
	in.Port = port
	got := in.Inspect(context.Background(), "127.0.0.1")
	if _, ok := got.Days(); ok {
		t.Fatalf("want error variant, got %s", got)
	}
	if got.Err() == "" || !strings.HasPrefix(got.String(), "SSL Error: ") {
		t.Fatalf("unexpected error text %q", got.String())
	}

	_, err = in.Expiry(context.Background(), "127.0.0.1")
	var ce *Error
	if !errors.As(err, &ce) || ce.Host != "127.0.0.1" {
		t.Fatalf("want *certs.Error, got %T %v", err, err)
	}
}

func TestInspectURL_PlainHTTPNotApplicable(t *testing.T) {
	in := NewInspector(time.Second)
	got := in.InspectURL(context.Background(), "http://example.com/health")
	if got.Applicable() {
		t.Fatalf("want not applicable, got %s", got)
	}
}

func TestDaysRemaining_Floors(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		notAfter time.Time
		want     int
	}{
		{now.Add(36 * time.Hour), 1},
		{now.Add(23 * time.Hour), 0},
		{now.Add(-1 * time.Hour), -1},
		{now.Add(-49 * time.Hour), -3},
	}
	for _, c := range cases {
		if got := DaysRemaining(c.notAfter, now); got != c.want {
			t.Fatalf("DaysRemaining(%v)=%d want %d", c.notAfter, got, c.want)
		}
	}
}

func TestHostFromURL(t *testing.T) {
	if h := HostFromURL("https://Example.com:8443/path?q=1"); h != "Example.com" {
		t.Fatalf("got %q", h)
	}
	if !Applicable("HTTPS://example.com") || Applicable("http://example.com") {
		t.Fatalf("scheme detection wrong")
	}
}
