package netutil

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain returns the eTLD+1 of target, which may be a URL, a
// host:port pair or a bare host. IP addresses and single-label hosts are
// returned unchanged. The result is lower-case without a trailing dot.
//
//	"https://api.spacexdata.com/v5/launches" -> "spacexdata.com"
//	"images2.imgbox.com:443"                 -> "imgbox.com"
//	"http://127.0.0.1:8080/v5"               -> "127.0.0.1"
//	"[::1]:80"                               -> "::1"
func RegistrableDomain(target string) string {
	if strings.Contains(target, "://") || strings.HasPrefix(target, "//") {
		if u, err := url.Parse(target); err == nil && u.Host != "" {
			target = u.Host
		}
	}

	host := target
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")

	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}

// SameRegistrableDomain reports whether a and b share an eTLD+1.
// An empty target never matches.
func SameRegistrableDomain(a, b string) bool {
	da, db := RegistrableDomain(a), RegistrableDomain(b)
	return da != "" && da == db
}
