package mw

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// clientIP resolves the caller address. With trustProxy the
// CF-Connecting-IP, X-Forwarded-For (left-most) and X-Real-IP headers are
// consulted in that order before RemoteAddr.
func clientIP(r *http.Request, trustProxy bool) (netip.Addr, bool) {
	if trustProxy {
		for _, v := range []string{
			r.Header.Get("CF-Connecting-IP"),
			firstForwardedFor(r.Header.Get("X-Forwarded-For")),
			r.Header.Get("X-Real-IP"),
		} {
			if ip, ok := parseAddr(v); ok {
				return ip, true
			}
		}
	}
	return parseAddr(r.RemoteAddr)
}

// parseAddr accepts "ip", "ip:port" and "[v6]:port".
func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		s = h
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

func firstForwardedFor(xff string) string {
	if i := strings.IndexByte(xff, ','); i >= 0 {
		xff = xff[:i]
	}
	return strings.TrimSpace(xff)
}

// prefixMatcher matches single addresses and CIDR ranges.
type prefixMatcher []netip.Prefix

// newPrefixMatcher parses list, skipping entries that are neither an
// address nor a prefix. It returns the skipped entries.
func newPrefixMatcher(list []string) (prefixMatcher, []string) {
	var (
		m       prefixMatcher
		invalid []string
	)
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m = append(m, p.Masked())
			continue
		}
		if ip, err := netip.ParseAddr(s); err == nil {
			ip = ip.Unmap()
			m = append(m, netip.PrefixFrom(ip, ip.BitLen()))
			continue
		}
		invalid = append(invalid, s)
	}
	return m, invalid
}

func (m prefixMatcher) allow(ip netip.Addr) bool {
	for _, p := range m {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
