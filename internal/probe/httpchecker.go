package probe

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/sitewatch/internal/domain"
)

const (
	DefaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 2 << 20
	userAgent           = "sitewatch/1.0"
)

type HTTPChecker struct {
	Client       *http.Client
	Certs        CertInspector
	MaxBodyBytes int64
}

// NewHTTPChecker returns a checker with a fixed client timeout. certs may be
// nil, in which case no certificate inspection is done.
func NewHTTPChecker(timeout time.Duration, certs CertInspector) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client:       &http.Client{Timeout: timeout},
		Certs:        certs,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
}

func (h *HTTPChecker) Probe(ctx context.Context, site domain.SiteConfig) domain.ProbeResult {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site.URL, nil)
	if err != nil {
		return h.failed(ctx, site, &domain.ProbeError{Kind: domain.ErrKindInvalidURL, Message: err.Error()})
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.Client.Do(req)
	if err != nil {
		return h.failed(ctx, site, newProbeError(err))
	}
	defer resp.Body.Close()

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return h.failed(ctx, site, newProbeError(fmt.Errorf("read body: %w", err)))
	}
	latency := millis(time.Since(start))

	status := resp.StatusCode
	valid := contentValid(body, site.ValidationText)
	return domain.ProbeResult{
		Online:       status == http.StatusOK,
		LatencyMS:    &latency,
		StatusCode:   &status,
		ContentValid: &valid,
		SSL:          h.inspect(ctx, site.URL),
	}
}

func (h *HTTPChecker) failed(ctx context.Context, site domain.SiteConfig, perr *domain.ProbeError) domain.ProbeResult {
	return domain.ProbeResult{
		Online: false,
		Error:  perr,
		SSL:    h.inspect(ctx, site.URL),
	}
}

func (h *HTTPChecker) inspect(ctx context.Context, rawURL string) domain.SSLExpiry {
	if h.Certs == nil {
		return domain.SSLNotApplicable()
	}
	// the probe's own deadline may already be spent; the inspector has its own
	return h.Certs.InspectURL(context.WithoutCancel(ctx), rawURL)
}

// contentValid is true when no validation text is configured.
func contentValid(body []byte, validationText string) bool {
	if validationText == "" {
		return true
	}
	return strings.Contains(string(body), validationText)
}

func millis(d time.Duration) int {
	return int(math.Round(float64(d) / float64(time.Millisecond)))
}
