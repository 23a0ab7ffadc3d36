package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

// Resolver turns chat text into a TrackRef, following short links when present.
type Resolver struct {
	client          *http.Client
	shortLink       *regexp.Regexp
	canonicalDomain string
}

// Option configures a Resolver.
type Option func(*resolverOptions)

type resolverOptions struct {
	shortHosts      []string
	canonicalDomain string
	timeout         time.Duration
}

// WithShortHosts replaces the recognised short-link hosts.
func WithShortHosts(hosts ...string) Option {
	return func(o *resolverOptions) {
		o.shortHosts = hosts
	}
}

// WithCanonicalDomain replaces the domain that terminates redirect following.
func WithCanonicalDomain(domain string) Option {
	return func(o *resolverOptions) {
		o.canonicalDomain = domain
	}
}

// WithTimeout sets the per-request timeout for short-link resolution.
func WithTimeout(d time.Duration) Option {
	return func(o *resolverOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewResolver creates a new resolver.
func NewResolver(opts ...Option) *Resolver {
	o := resolverOptions{
		shortHosts:      DefaultShortHosts,
		canonicalDomain: CanonicalDomain,
		timeout:         defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Resolver{
		client:          newHTTPClient(o.timeout, o.canonicalDomain),
		shortLink:       shortLinkRegex(o.shortHosts),
		canonicalDomain: o.canonicalDomain,
	}
}

// FindShortLink returns the first short link in text.
func (r *Resolver) FindShortLink(text string) (string, bool) {
	link := r.shortLink.FindString(text)
	return link, link != ""
}

// CanResolve reports whether text carries a canonical or short track link.
func (r *Resolver) CanResolve(text string) bool {
	if _, ok := ParseTrackURL(text); ok {
		return true
	}
	_, ok := r.FindShortLink(text)
	return ok
}

// ResolveShortLink follows the redirect chain of link and returns the URL it settles on.
// A redirect into the canonical domain is not requested; its target is returned as is.
func (r *Resolver) ResolveShortLink(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", commonUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrTooManyRedirects) {
			return "", ErrTooManyRedirects
		}
		return "", fmt.Errorf("failed to resolve short link: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if isRedirect(resp.StatusCode) {
		loc, err := resp.Location()
		if err != nil {
			return "", fmt.Errorf("redirect without location: %w", err)
		}
		return loc.String(), nil
	}

	return resp.Request.URL.String(), nil
}

// Resolve extracts a track from text. A short link, if present, is resolved first
// and its result replaces text.
func (r *Resolver) Resolve(ctx context.Context, text string) (TrackRef, error) {
	if link, ok := r.FindShortLink(text); ok {
		resolved, err := r.ResolveShortLink(ctx, link)
		if err != nil {
			return TrackRef{}, err
		}
		text = resolved
	}

	ref, ok := ParseTrackURL(text)
	if !ok {
		return TrackRef{}, ErrNoTrack
	}

	return ref, nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
