package openrouter

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://openrouter.ai"

// ErrBaseURL marks a translation endpoint that the API key must not be sent to.
var ErrBaseURL = errors.New("invalid translation base URL")

var knownHosts = []string{"openrouter.ai", "api.openrouter.ai"}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// ValidateBaseURL reports whether baseURL may receive the API key. Hosts must
// appear in allowedHosts (the OpenRouter hosts when empty) and the scheme must
// be https, except for loopback proxies which may use plain http.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	_, err := newEndpointPolicy(allowedHosts).check(normalizeBaseURL(baseURL))
	return err
}

type endpointPolicy struct {
	hosts map[string]struct{}
}

func newEndpointPolicy(allowedHosts []string) endpointPolicy {
	p := endpointPolicy{hosts: map[string]struct{}{}}
	for _, h := range allowedHosts {
		if v := bareHost(h); v != "" {
			p.hosts[v] = struct{}{}
		}
	}
	if len(p.hosts) == 0 {
		for _, h := range knownHosts {
			p.hosts[h] = struct{}{}
		}
	}
	return p
}

// check parses raw and returns the first rule it breaks.
func (p endpointPolicy) check(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseURL, err)
	}
	reject := func(reason string, args ...any) (*url.URL, error) {
		return nil, fmt.Errorf("%w %q: %s", ErrBaseURL, raw, fmt.Sprintf(reason, args...))
	}

	switch {
	case !u.IsAbs() || u.Host == "":
		return reject("absolute URL with host is required")
	case u.User != nil:
		return reject("userinfo is not allowed")
	case u.RawQuery != "" || u.Fragment != "":
		return reject("query and fragment are not allowed")
	}

	host := strings.ToLower(u.Hostname())
	switch scheme := strings.ToLower(u.Scheme); {
	case scheme == "https":
	case scheme == "http" && isLoopback(host):
	case scheme == "http":
		return reject("https is required")
	default:
		return reject("unsupported scheme %q", u.Scheme)
	}

	if _, ok := p.hosts[host]; !ok {
		return reject("host %q is not in the allowed hosts", host)
	}
	return u, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// bareHost strips scheme, slashes and port from an allowed-hosts entry.
func bareHost(entry string) string {
	v := strings.ToLower(strings.TrimSpace(entry))
	if i := strings.Index(v, "://"); i >= 0 {
		v = v[i+3:]
	}
	v = strings.Trim(v, "/")
	if host, _, err := net.SplitHostPort(v); err == nil {
		v = host
	}
	return v
}
