package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// AuthorizerPingTimeout bounds a reachability check of the session service
const AuthorizerPingTimeout = 1500 * time.Millisecond

// ServiceAddress resolves a service URL, or a bare domain, to host:port
func ServiceAddress(serviceURL string) (string, error) {
	u, err := url.Parse(serviceURL)
	if err == nil && u.Host == "" {
		// Bare domains parse as a path
		u, err = url.Parse("https://" + serviceURL)
	}
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid URL %q: no host", serviceURL)
	}

	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// PingService checks that a TCP listener answers for the service URL
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) error {
	address, err := ServiceAddress(serviceURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks if the Authorizer service is reachable
func PingAuthorizer(ctx context.Context, authzURL string) error {
	return PingService(ctx, authzURL, AuthorizerPingTimeout)
}
