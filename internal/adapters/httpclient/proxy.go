package httpclient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNoValidProxy = errors.New("no valid proxy entry")

var proxySchemes = map[string]struct{}{
	"http":   {},
	"https":  {},
	"socks5": {},
}

func ValidateProxy(raw string) error {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}
	if _, ok := proxySchemes[strings.ToLower(parsed.Scheme)]; !ok || !strings.Contains(trimmed, "://") {
		return fmt.Errorf("unsupported proxy scheme %q: use http, https or socks5", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("proxy url host is required")
	}
	return nil
}

// SelectProxy returns the first entry that ValidateProxy accepts.
func SelectProxy(entries []string) (string, error) {
	for _, entry := range entries {
		candidate := strings.TrimSpace(entry)
		if candidate == "" {
			continue
		}
		if ValidateProxy(candidate) == nil {
			return candidate, nil
		}
	}
	return "", ErrNoValidProxy
}

// Redact hides proxy credentials for display.
func Redact(proxy string) string {
	if proxy == "" {
		return ""
	}
	parsed, err := url.Parse(proxy)
	if err != nil || parsed.User == nil {
		return proxy
	}
	return parsed.Scheme + "://***@" + parsed.Host
}
