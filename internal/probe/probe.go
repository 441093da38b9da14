package probe

import (
	"context"

	"github.com/hamed0406/sitewatch/internal/domain"
)

// Checker performs exactly one check of a site. It never returns an error:
// transport failures are recorded in the result.
type Checker interface {
	Probe(ctx context.Context, site domain.SiteConfig) domain.ProbeResult
}

// CertInspector reports certificate expiry for a URL.
type CertInspector interface {
	InspectURL(ctx context.Context, rawURL string) domain.SSLExpiry
}
