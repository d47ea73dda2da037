package httputil

import (
	"context"
	"net/http"
	"net/url"

	"olx_harvester/config"
)

// Clients bundles the HTTP clients for the two fetch stages. Both reuse
// connections through their transport; the detail client fails faster so a
// stalled card does not hold up the batch.
type Clients struct {
	Crawl     *http.Client
	Detail    *http.Client
	userAgent string
}

func NewClients(cfg *config.Config) *Clients {
	transport := http.DefaultTransport
	if cfg.Proxy.URL != "" {
		if proxyURL, err := url.Parse(cfg.Proxy.URL); err == nil {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Clients{
		Crawl: &http.Client{
			Timeout:   cfg.Crawl.Timeout,
			Transport: transport,
		},
		Detail: &http.Client{
			Timeout:   cfg.Detail.Timeout,
			Transport: transport,
		},
		userAgent: cfg.UserAgent,
	}
}

// NewRequest builds a GET request carrying the browser-like identity header.
func (c *Clients) NewRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}
