package render

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrImageHostNotAllowed = errors.New("artwork image host is not allowed")

// checkImageURL accepts http(s) URLs whose host is listed in hosts. An entry
// with a leading "." also matches every subdomain of it.
func checkImageURL(raw string, hosts []string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("artwork image url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("artwork image url scheme %q must be http or https", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	for _, entry := range hosts {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if host == strings.TrimPrefix(entry, ".") || (strings.HasPrefix(entry, ".") && strings.HasSuffix(host, entry)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrImageHostNotAllowed, host)
}
