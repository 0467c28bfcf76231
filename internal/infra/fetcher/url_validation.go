// Package fetcher downloads user-supplied web pages and extracts their paragraph text.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"syscall"

	"content-summarizer/internal/usecase/extract"
)

// validateURL rejects URLs the fetcher must not request: schemes other than
// http and https, and (when denyPrivateIPs is set) hosts resolving to an
// internal address. A host that does not resolve is a fetch failure, not a
// rejected URL. The dialer repeats the address check on the IP it actually
// connects to, see denyPrivateDial.
//
// Blocked IP ranges (when denyPrivateIPs is true):
//   - 127.0.0.0/8, ::1 (loopback)
//   - 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, fc00::/7 (private)
//   - 169.254.0.0/16, fe80::/10 (link-local)
//   - 0.0.0.0, :: (unspecified)
func validateURL(ctx context.Context, urlStr string, denyPrivateIPs bool) (*url.URL, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: parse error: %v", extract.ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", extract.ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return nil, fmt.Errorf("%w: empty hostname", extract.ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return u, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return nil, fmt.Errorf("%w: DNS lookup failed for %s: %v", extract.ErrFetch, hostname, err)
	}

	for _, addr := range addrs {
		if isPrivateIP(addr.IP) {
			return nil, fmt.Errorf("%w: hostname '%s' resolves to private IP %s", extract.ErrPrivateIP, hostname, addr.IP.String())
		}
	}

	return u, nil
}

// denyPrivateDial is a net.Dialer Control hook refusing connections to
// internal addresses. It runs after name resolution, so a host that
// re-resolves to a private IP between validateURL and the dial is still
// blocked.
func denyPrivateDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: bad dial address %q", extract.ErrInvalidURL, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || isPrivateIP(ip) {
		return fmt.Errorf("%w: refusing to dial %s over %s", extract.ErrPrivateIP, address, network)
	}
	return nil
}

// isPrivateIP checks if an IP address is in a private or loopback range.
// This function supports both IPv4 and IPv6 addresses.
//
// Reference:
//   - https://tools.ietf.org/html/rfc1918 (Private IPv4)
//   - https://tools.ietf.org/html/rfc4193 (Private IPv6)
//   - https://tools.ietf.org/html/rfc3927 (Link-local IPv4)
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
