package mw

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Forwarding headers consulted behind a trusted proxy, most specific first.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ClientIP returns the caller's address. With trustProxy the forwarding
// headers win (left-most X-Forwarded-For entry); otherwise only RemoteAddr
// counts, since any client can set those headers.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range proxyHeaders {
			v := r.Header.Get(h)
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if ip := stripPort(strings.TrimSpace(v)); ip != "" {
				return ip
			}
		}
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(s string) string {
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}

// addrSet is an allow-list of prefixes. Bare addresses become single-host
// prefixes.
type addrSet struct {
	prefixes []netip.Prefix
}

// parseAddrSet builds the set and returns the entries it could not parse.
func parseAddrSet(list []string) (addrSet, []string) {
	var set addrSet
	var invalid []string
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			set.prefixes = append(set.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			a = a.Unmap()
			set.prefixes = append(set.prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		invalid = append(invalid, s)
	}
	return set, invalid
}

func (s addrSet) empty() bool { return len(s.prefixes) == 0 }

func (s addrSet) contains(ip string) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range s.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
