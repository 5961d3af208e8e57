package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

var (
	ErrNoProxy     = errors.New("proxy url list is empty")
	ErrUnsupported = errors.New("unsupported proxy scheme")
)

// Func picks the proxy of a request, as http.Transport.Proxy does.
type Func func(*http.Request) (*url.URL, error)

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

func (r *roundRobinSwitcher) GetProxy(*http.Request) (*url.URL, error) {
	if len(r.proxyURLs) == 0 {
		return nil, ErrNoProxy
	}
	index := atomic.AddUint32(&r.index, 1) - 1
	return r.proxyURLs[index%uint32(len(r.proxyURLs))], nil
}

// Parse reads a proxy address. "http", "https" and "socks5" schemes are
// supported; a bare host:port is taken as http.
func Parse(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("proxy %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https", "socks5":
		return u, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupported, raw)
}

// RoundRobinProxySwitcher returns a Func using every proxy of the list in
// turn, one request each.
func RoundRobinProxySwitcher(proxyURLs ...string) (Func, error) {
	if len(proxyURLs) == 0 {
		return nil, ErrNoProxy
	}

	urls := make([]*url.URL, len(proxyURLs))
	for i, raw := range proxyURLs {
		u, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		urls[i] = u
	}

	return (&roundRobinSwitcher{proxyURLs: urls}).GetProxy, nil
}
