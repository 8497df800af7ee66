package fetcher

import (
	"fmt"
	"net"
	"net/url"
)

// ErrInvalidURL is returned when a URL is malformed or uses a disallowed scheme.
var ErrInvalidURL = fmt.Errorf("invalid url")

// ErrPrivateIP is returned when a URL resolves to a private/loopback/link-local address.
var ErrPrivateIP = fmt.Errorf("url resolves to a private ip address")

// validateURL prevents SSRF by restricting scheme to http/https and, when
// denyPrivateIPs is set, resolving the hostname and rejecting private
// ranges. Adapted from the teacher's content-fetch SSRF guard.
func validateURL(rawURL string, denyPrivateIPs bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed (only http/https)", ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: dns lookup failed for %s: %v", ErrInvalidURL, hostname, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: hostname %q resolves to private ip %s", ErrPrivateIP, hostname, ip)
		}
	}

	return nil
}

// isPrivateIP reports whether ip is loopback, private, or link-local
// (IPv4 or IPv6).
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// origin returns the scheme://host[:port] triple the robots cache and
// per-host pacing table key on.
func origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}
