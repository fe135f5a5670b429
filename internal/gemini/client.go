package gemini

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// HTTPClient abstracts the HTTP client for better testing
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client on a cloned default transport.
// proxyURL may be empty, http(s)://host:port or socks5://host:port.
// Deadlines come from each request's context, so no client timeout is set.
func NewHTTPClient(proxyURL string) (*http.Client, error) {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("default transport is not *http.Transport")
	}
	cloned := transport.Clone()

	if proxyURL == "" {
		return &http.Client{Transport: cloned}, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		cloned.Proxy = http.ProxyURL(u)
	case "socks", "socks5":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("invalid socks proxy: %w", err)
		}
		cloned.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			cloned.DialContext = cd.DialContext
		} else {
			cloned.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}

	return &http.Client{Transport: cloned}, nil
}
