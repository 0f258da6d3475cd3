package service

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrWindowURL marks a window webhook URL the console refuses to call.
var ErrWindowURL = errors.New("window url not allowed")

// WindowPolicy decides which webhook URLs OpenWindow may post to. With
// AllowedHosts set only those hosts are reachable. Without it any public
// host is, and loopback, private and link-local address literals are not.
// Host names are not resolved.
type WindowPolicy struct {
	AllowedHosts []string
}

// Check reports why raw may not be called, or nil.
func (p WindowPolicy) Check(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWindowURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrWindowURL, u.Scheme)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return fmt.Errorf("%w: no host", ErrWindowURL)
	}
	if u.User != nil {
		return fmt.Errorf("%w: credentials in url", ErrWindowURL)
	}

	if len(p.AllowedHosts) > 0 {
		for _, h := range p.AllowedHosts {
			if strings.EqualFold(strings.TrimSpace(h), host) {
				return nil
			}
		}
		return fmt.Errorf("%w: host %q not allowed", ErrWindowURL, host)
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%w: host %q is local", ErrWindowURL, host)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
			ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast() {
			return fmt.Errorf("%w: address %s is internal", ErrWindowURL, ip)
		}
	}
	return nil
}
