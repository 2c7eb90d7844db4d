// Package clientip resolves the originating client address of a request.
//
// Forwarding headers are only honoured when the socket peer is a trusted
// proxy. Without trusted proxies the peer address is the client address.
package clientip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ErrInvalidProxy is returned for a trusted proxy entry that is neither an
// IP address nor a CIDR prefix.
var ErrInvalidProxy = errors.New("clientip: invalid trusted proxy")

// Config lists the proxies allowed to set forwarding headers.
type Config struct {
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// ParseTrusted parses IP addresses and CIDR prefixes. Empty entries are
// skipped.
func ParseTrusted(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, e)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, e)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// Resolver extracts client IPs given a set of trusted proxies.
type Resolver struct {
	trusted []netip.Prefix
}

// New creates a resolver trusting the given prefixes.
func New(trusted ...netip.Prefix) *Resolver {
	return &Resolver{trusted: trusted}
}

// NewFromConfig parses cfg and creates a resolver.
func NewFromConfig(cfg Config) (*Resolver, error) {
	trusted, err := ParseTrusted(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	return New(trusted...), nil
}

var untrusting = New()

// GetIP returns the client IP. When the peer is a trusted proxy the CDN
// headers win, then the rightmost X-Forwarded-For hop that is not itself
// trusted, then X-Real-IP. Only syntactically valid addresses are returned.
func (rs *Resolver) GetIP(r *http.Request) string {
	peer, ok := peerAddr(r.RemoteAddr)
	if !ok {
		return ""
	}
	if !rs.isTrusted(peer) {
		return peer.String()
	}

	for _, h := range []string{"CF-Connecting-IP", "DO-Connecting-IP"} {
		if ip, ok := parseAddr(r.Header.Get(h)); ok {
			return ip.String()
		}
	}

	if hops := r.Header.Values("X-Forwarded-For"); len(hops) > 0 {
		list := strings.Split(strings.Join(hops, ","), ",")
		for i := len(list) - 1; i >= 0; i-- {
			ip, ok := parseAddr(list[i])
			if !ok {
				break
			}
			if !rs.isTrusted(ip) {
				return ip.String()
			}
		}
	}

	if ip, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
		return ip.String()
	}
	return peer.String()
}

func (rs *Resolver) isTrusted(ip netip.Addr) bool {
	for _, p := range rs.trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware stores the resolved client IP in the request context.
func (rs *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKey{}, rs.GetIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIP resolves the client IP without trusting any proxy headers.
func GetIP(r *http.Request) string {
	return untrusting.GetIP(r)
}

// Middleware is Resolver.Middleware without trusted proxies.
func Middleware(next http.Handler) http.Handler {
	return untrusting.Middleware(next)
}

func peerAddr(remote string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	return parseAddr(host)
}

func parseAddr(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

type contextKey struct{}

// FromContext returns the IP stored by Middleware, or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// FromRequest returns the IP stored by Middleware, resolving it on the spot
// from the peer address when the middleware did not run.
func FromRequest(r *http.Request) string {
	if ip := FromContext(r.Context()); ip != "" {
		return ip
	}
	return GetIP(r)
}
