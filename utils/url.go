package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateImageURL rejects URLs that should never reach the image fetcher.
// Warm-up requests carry client-supplied URLs, so anything that is not plain
// http(s) is refused.
func ValidateImageURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}
	return nil
}

// EncodeURLWithSpaces re-encodes a URL that may contain raw spaces. Some
// artwork CDNs hand out paths with unencoded spaces, which must become %20
// before the URL is usable in an HTTP request.
func EncodeURLWithSpaces(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	encoded := parsed.Scheme + "://" + parsed.Host + parsed.EscapedPath()
	if parsed.RawQuery != "" {
		encoded += "?" + strings.ReplaceAll(parsed.RawQuery, " ", "%20")
	}
	return encoded, nil
}
