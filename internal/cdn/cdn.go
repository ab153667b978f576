// Package cdn rewrites binary-store URLs to their CDN-fronted form.
package cdn

import (
	"net/url"

	"github.com/yokitheyo/imagestore/internal/config"
)

// Rewriter swaps the host (and optionally scheme) of a URL. The zero
// value, and any unparseable input, passes URLs through unchanged.
type Rewriter struct {
	host   string
	scheme string
}

func NewRewriter(cfg config.CDNConfig) *Rewriter {
	return &Rewriter{host: cfg.Host, scheme: cfg.Scheme}
}

// Rewrite points the URL at the CDN host. Paths and queries survive
// untouched so the CDN can proxy straight back to the store.
func (r *Rewriter) Rewrite(raw string) string {
	if r == nil || r.host == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Host = r.host
	if r.scheme != "" {
		u.Scheme = r.scheme
	}
	return u.String()
}
