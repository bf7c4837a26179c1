package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateEndpointURL validates the URL contact submissions are posted to.
// Only absolute http/https URLs with a host are accepted.
func ValidateEndpointURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q (only http/https allowed)", parsed.Scheme)
	}

	if strings.ContainsAny(rawURL, " \n\r\t") {
		return fmt.Errorf("URL contains whitespace")
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	if parsed.User != nil {
		return fmt.Errorf("URL must not embed credentials")
	}

	return nil
}

// OriginAllowed reports whether the Origin header value names one of the
// allowed hosts (host or host:port) over http or https.
func OriginAllowed(origin string, allowedHosts []string) bool {
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	for _, allowed := range allowedHosts {
		if strings.EqualFold(originURL.Host, allowed) {
			return true
		}
	}

	return false
}
