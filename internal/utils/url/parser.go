package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL performs comprehensive URL validation
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ResolveURL resolves a possibly-relative href against a base URL and returns a string
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// ResolveAll resolves each href against base, keeping order
func ResolveAll(base string, hrefs []string) []string {
	out := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		if href = strings.TrimSpace(href); href != "" {
			out = append(out, ResolveURL(base, href))
		}
	}
	return out
}

// EndpointCandidates derives the secondary URLs a site may serve its table
// data from, in probe order: the WordPress AJAX handler, a data/ child of
// the page path, and the page path under /api. Query and fragment are
// dropped.
func EndpointCandidates(primary string) ([]string, error) {
	if err := ValidateURL(primary); err != nil {
		return nil, err
	}
	u, _ := url.Parse(primary)

	origin := u.Scheme + "://" + u.Host
	path := u.EscapedPath()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return []string{
		origin + "/wp-admin/admin-ajax.php",
		origin + path + "data/",
		origin + "/api" + path,
	}, nil
}
