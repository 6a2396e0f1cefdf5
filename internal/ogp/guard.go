package ogp

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

var (
	// ErrInvalidURL is returned for URLs that cannot be fetched at all.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrBlockedHost is returned for URLs that point at internal infrastructure.
	ErrBlockedHost = errors.New("blocked host")
)

var blockedHostnames = map[string]struct{}{
	"localhost":                {},
	"metadata.google.internal": {},
	"169.254.169.254":          {},
}

// validateURLScheme parses rawURL and rejects anything that is not an
// absolute http(s) URL or that names a blocked host.
func validateURLScheme(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: invalid URL scheme %q", ErrInvalidURL, parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if _, blocked := blockedHostnames[host]; blocked {
		return nil, fmt.Errorf("%w: blocked hostname %q", ErrBlockedHost, host)
	}

	return parsed, nil
}

// checkHostIP rejects IP literals in private ranges before any dial.
func checkHostIP(parsed *url.URL) error {
	ip := net.ParseIP(parsed.Hostname())
	if ip != nil && isPrivateIP(ip) {
		return fmt.Errorf("%w: private address %s", ErrBlockedHost, ip)
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsUnspecified()
}

// dialControl vets the resolved address of every connection, which covers
// hostnames that resolve to internal addresses and redirects to them.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBlockedHost, err)
	}
	if ip := net.ParseIP(host); isPrivateIP(ip) {
		return fmt.Errorf("%w: private address %s", ErrBlockedHost, ip)
	}
	return nil
}
