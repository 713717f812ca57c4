package imagehost

import (
	"net/netip"
	"net/url"
	"strings"
)

// Source URLs must be public HTTPS endpoints. Loopback, RFC1918, link-local
// and otherwise non-public hosts are refused before any fetch happens.

var blockedHostnames = map[string]struct{}{
	"localhost": {},
	"0.0.0.0":   {},
}

// ValidateSource checks protocol and host policy for an image source URL.
func ValidateSource(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" || u.Hostname() == "" {
		return ErrNotHTTPS
	}
	if BlockedHost(u.Hostname()) {
		return ErrBlockedHost
	}
	return nil
}

// BlockedHost reports whether the hostname targets a loopback or private
// network address.
func BlockedHost(hostname string) bool {
	host := strings.ToLower(strings.Trim(hostname, "[]"))
	if _, ok := blockedHostnames[host]; ok {
		return true
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
			addr.IsLinkLocalMulticast() || addr.IsUnspecified()
	}
	// Dotted names that smuggle private ranges, e.g. "10.0.0.1.nip.io".
	for _, prefix := range []string{"10.", "192.168.", "172.16.", "172.17.", "172.18.",
		"172.19.", "172.2", "172.30.", "172.31."} {
		if strings.HasPrefix(host, prefix) {
			return true
		}
	}
	return false
}
