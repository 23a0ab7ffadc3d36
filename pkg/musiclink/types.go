// Package musiclink recognises Spotify track links and resolves short links to canonical track URLs.
package musiclink

import (
	"regexp"
)

const (
	// CanonicalHost serves the human-shared track pages.
	CanonicalHost = "open.spotify.com"
	// CanonicalDomain is the catalog domain; redirects into it end short-link resolution.
	CanonicalDomain = "spotify.com"
	// urnScheme prefixes catalog URNs.
	urnScheme = "spotify"
)

// DefaultShortHosts are the short-link hosts recognised in chat text.
var DefaultShortHosts = []string{"spotify.link", "spotify.app.link"}

var (
	trackURLRegex = regexp.MustCompile(`https?://open\.spotify\.com/track/(\w+)`)
	trackURNRegex = regexp.MustCompile(`(?:accept:)?spotify:track:(\w+)`)
	trackIDRegex  = regexp.MustCompile(`^\w+$`)
)

// TrackRef identifies a single catalog track.
type TrackRef struct {
	ID string
}

// URL returns the canonical share URL of the track.
func (r TrackRef) URL() string {
	return "https://" + CanonicalHost + "/track/" + r.ID
}

// URN returns the catalog URN of the track.
func (r TrackRef) URN() string {
	return urnScheme + ":track:" + r.ID
}

func (r TrackRef) String() string {
	return r.URN()
}

// ParseTrackURL finds a canonical track URL anywhere in text.
func ParseTrackURL(text string) (TrackRef, bool) {
	m := trackURLRegex.FindStringSubmatch(text)
	if m == nil {
		return TrackRef{}, false
	}
	return TrackRef{ID: m[1]}, true
}

// ParseTrackURN finds a track URN, optionally prefixed with "accept:", anywhere in text.
func ParseTrackURN(text string) (TrackRef, bool) {
	m := trackURNRegex.FindStringSubmatch(text)
	if m == nil {
		return TrackRef{}, false
	}
	return TrackRef{ID: m[1]}, true
}

// ValidTrackID reports whether id is a well-formed track id.
func ValidTrackID(id string) bool {
	return trackIDRegex.MatchString(id)
}
