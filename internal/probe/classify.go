package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/hamed0406/sitewatch/internal/domain"
)

func newProbeError(err error) *domain.ProbeError {
	return &domain.ProbeError{Kind: Classify(err), Message: describe(err)}
}

// Classify maps a client error onto a probe error kind so callers can
// branch without parsing messages.
func Classify(err error) domain.ProbeErrorKind {
	if err == nil {
		return ""
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsTimeout {
			return domain.ErrKindTimeout
		}
		return domain.ErrKindDNS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrKindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.ErrKindTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.ErrKindRefused
	}

	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		certInvalid x509.CertificateInvalidError
		alertErr    tls.AlertError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &recordErr),
		errors.As(err, &unknownAuth),
		errors.As(err, &hostnameErr),
		errors.As(err, &certInvalid),
		errors.As(err, &alertErr):
		return domain.ErrKindTLS
	}
	if strings.Contains(err.Error(), "tls: ") {
		return domain.ErrKindTLS
	}

	var ue *url.Error
	if errors.As(err, &ue) && ue.Op == "parse" {
		return domain.ErrKindInvalidURL
	}
	return domain.ErrKindTransport
}

// describe drops the url.Error "Get \"...\":" wrapper, the URL is already on
// the record.
func describe(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}
