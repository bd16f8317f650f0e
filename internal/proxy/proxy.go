package proxy

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/williampepple1/site-snapshot/internal/config"
)

// Manager handles proxy configuration and rotation
type Manager struct {
	Config *config.ProxyConfig

	mu   sync.Mutex
	next int
}

// NewManager creates a new proxy manager
func NewManager(config *config.ProxyConfig) *Manager {
	return &Manager{
		Config: config,
	}
}

// Enabled reports whether requests should go through a proxy
func (m *Manager) Enabled() bool {
	return m.Config != nil && m.Config.Enabled && len(m.Config.List) > 0
}

// GetProxyURL returns a proxy URL from the configuration.
// With rotation on, successive calls walk the list round-robin.
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if !m.Enabled() {
		return nil, nil
	}

	m.mu.Lock()
	proxyStr := m.Config.List[0]
	if m.Config.Rotate && len(m.Config.List) > 1 {
		proxyStr = m.Config.List[m.next%len(m.Config.List)]
		m.next++
	}
	m.mu.Unlock()

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, err
	}

	if m.Config.Auth.Username != "" && m.Config.Auth.Password != "" {
		proxyURL.User = url.UserPassword(m.Config.Auth.Username, m.Config.Auth.Password)
	}

	return proxyURL, nil
}

// ApplyToTransport applies the proxy to an HTTP transport
func (m *Manager) ApplyToTransport(transport *http.Transport) (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil {
		return "", err
	}

	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
		return proxyURL.Redacted(), nil
	}

	return "", nil
}

// BrowserServer returns the proxy in the form Chrome's --proxy-server flag accepts.
// Chrome takes no credentials on the command line, so they are dropped.
func (m *Manager) BrowserServer() (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil || proxyURL == nil {
		return "", err
	}
	return proxyURL.Scheme + "://" + proxyURL.Host, nil
}
