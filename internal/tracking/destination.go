package tracking

import (
	"fmt"
	"net/url"
	"strings"
)

// Allowlist decides which hosts the click endpoint may redirect to.
type Allowlist struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewAllowlist always allows the host of baseURL. Entries in hosts are bare
// host names; "*.example.com" allows example.com and any subdomain of it.
func NewAllowlist(baseURL string, hosts []string) (*Allowlist, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Hostname() == "" {
		return nil, fmt.Errorf("tracking: invalid base url %q", baseURL)
	}

	a := &Allowlist{exact: map[string]struct{}{strings.ToLower(base.Hostname()): {}}}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			a.exact[h[2:]] = struct{}{}
			a.suffixes = append(a.suffixes, h[1:])
		default:
			a.exact[h] = struct{}{}
		}
	}
	return a, nil
}

// Check accepts absolute http(s) URLs without credentials whose host is allowed.
func (a *Allowlist) Check(destination string) error {
	if strings.TrimSpace(destination) == "" {
		return ErrMissingDestination
	}

	u, err := url.Parse(destination)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationNotAllowed, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%w: scheme %q", ErrDestinationNotAllowed, u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("%w: credentials in url", ErrDestinationNotAllowed)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrDestinationNotAllowed)
	}
	if _, ok := a.exact[host]; ok {
		return nil
	}
	for _, suffix := range a.suffixes {
		if strings.HasSuffix(host, suffix) {
			return nil
		}
	}
	return fmt.Errorf("%w: host %q", ErrDestinationNotAllowed, host)
}
