package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/williampepple1/site-snapshot/internal/config"
	"github.com/williampepple1/site-snapshot/internal/proxy"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

// HTTPScraper downloads asset bodies with browser-like request headers
type HTTPScraper struct {
	Config    *config.FetchConfig
	Proxy     *proxy.Manager
	ProxyUsed string

	client *http.Client
}

// NewHTTPScraper creates a new asset client from the fetch and proxy configuration
func NewHTTPScraper(cfg *config.AppConfig) (*HTTPScraper, error) {
	s := &HTTPScraper{
		Config: &cfg.Fetch,
		Proxy:  proxy.NewManager(&cfg.Proxies),
	}

	// Create a transport with proxy support
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	proxyUsed, err := s.Proxy.ApplyToTransport(transport)
	if err != nil {
		return nil, models.NewSnapshotError(models.ErrCodeInvalidConfig, "applying proxy", err)
	}
	s.ProxyUsed = proxyUsed

	if s.Config.ChromeTLS {
		if proxyUsed != "" {
			slog.Warn("chrome TLS fingerprint is only used for direct connections", "proxy", proxyUsed)
		} else {
			transport.DialTLSContext = (&chromeDialer{}).DialTLSContext
		}
	}

	// Create a client with the transport and timeout
	s.client = &http.Client{
		Transport: transport,
		Timeout:   s.Config.Timeout,
	}
	return s, nil
}

// Get fetches url and returns the full response body.
// Any status outside 2xx is an error.
func (s *HTTPScraper) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, models.NewSnapshotError(models.ErrCodeFetch, "building request", err)
	}
	req.Header.Set("User-Agent", s.userAgent())
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, models.NewSnapshotError(models.ErrCodeFetch, "requesting asset", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, models.NewSnapshotError(models.ErrCodeHTTPStatus, fmt.Sprintf("received status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewSnapshotError(models.ErrCodeFetch, "reading body", err)
	}
	return body, nil
}

// Close releases idle connections
func (s *HTTPScraper) Close() {
	s.client.CloseIdleConnections()
}

func (s *HTTPScraper) userAgent() string {
	if s.Config.UserAgent != "" {
		return s.Config.UserAgent
	}
	return config.DefaultUserAgent
}
