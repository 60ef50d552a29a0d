package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Email is a normalized, validated email address.
type Email string

// ParseEmail lowercases and validates an email address.
func ParseEmail(raw string) (Email, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(trimmed, "@")
	if at <= 0 || at != strings.LastIndex(trimmed, "@") || at == len(trimmed)-1 {
		return "", fmt.Errorf("invalid email %q", raw)
	}
	domainPart := trimmed[at+1:]
	if !strings.Contains(domainPart, ".") || strings.HasPrefix(domainPart, ".") || strings.HasSuffix(domainPart, ".") {
		return "", fmt.Errorf("invalid email domain %q", domainPart)
	}
	return Email(trimmed), nil
}

func (e Email) String() string {
	return string(e)
}

// WebURL is a validated absolute http(s) URL.
type WebURL string

// ParseWebURL validates an absolute http or https URL.
func ParseWebURL(raw string) (WebURL, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("url %q must be http or https", raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("url %q missing host", raw)
	}
	return WebURL(trimmed), nil
}

func (u WebURL) String() string {
	return string(u)
}
