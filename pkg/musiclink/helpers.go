package musiclink

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	// commonUserAgent is the user agent string used for all HTTP requests.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// defaultHTTPTimeout is the default timeout for HTTP requests.
	defaultHTTPTimeout = 10 * time.Second
	// maxHTTPRedirects is the maximum number of redirects followed for a short link.
	maxHTTPRedirects = 5
)

var (
	// ErrTooManyRedirects is returned when a short-link chain exceeds maxHTTPRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrNoTrack is returned when text does not resolve to a track.
	ErrNoTrack = errors.New("no track link found")
)

// newHTTPClient creates an HTTP client that follows short-link redirects until
// they enter canonicalDomain.
func newHTTPClient(timeout time.Duration, canonicalDomain string) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxHTTPRedirects {
				return ErrTooManyRedirects
			}
			if inDomain(req.URL.Hostname(), canonicalDomain) {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// inDomain reports whether host equals domain or is a subdomain of it.
func inDomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// shortLinkRegex matches http(s) links on any of hosts followed by a token.
func shortLinkRegex(hosts []string) *regexp.Regexp {
	quoted := make([]string, 0, len(hosts))
	for _, h := range hosts {
		quoted = append(quoted, regexp.QuoteMeta(h))
	}
	return regexp.MustCompile(`https?://(?:` + strings.Join(quoted, "|") + `)/\w+`)
}
