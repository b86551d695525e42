package proxy

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Manager handles the rotation of proxies and user agents.
type Manager struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses the proxy URLs. Blank entries are skipped; an empty list means direct connections.
func NewManager(proxies, userAgents []string) (*Manager, error) {
	m := &Manager{}
	for _, raw := range proxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", raw)
		}
		m.proxies = append(m.proxies, u)
	}
	for _, ua := range userAgents {
		if ua = strings.TrimSpace(ua); ua != "" {
			m.userAgents = append(m.userAgents, ua)
		}
	}
	return m, nil
}

// HasProxies reports whether any proxy is configured.
func (m *Manager) HasProxies() bool {
	return len(m.proxies) > 0
}

// GetProxy returns a proxy URL from the list, rotating sequentially. It returns nil
// when no proxy is configured.
func (m *Manager) GetProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// ProxyFunc adapts GetProxy to http.Transport.Proxy.
func (m *Manager) ProxyFunc(*http.Request) (*url.URL, error) {
	return m.GetProxy(), nil
}

// GetUserAgent returns a random user agent string, or "" when none is configured.
func (m *Manager) GetUserAgent() string {
	if len(m.userAgents) == 0 {
		return ""
	}
	return m.userAgents[rand.Intn(len(m.userAgents))]
}
