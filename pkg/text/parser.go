// Package text provides text normalisation and link classification for chat messages.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"queuevote/pkg/musiclink"
)

// MessageType classifies a chat message by the links it carries.
type MessageType int

const (
	// MessageTypeFreeText carries no recognised music link
	MessageTypeFreeText MessageType = iota
	// MessageTypeTrackLink carries a Spotify track or short link
	MessageTypeTrackLink
	// MessageTypeOtherLink carries a link to another music service
	MessageTypeOtherLink
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeFreeText:
		return "free_text"
	case MessageTypeTrackLink:
		return "track_link"
	case MessageTypeOtherLink:
		return "other_link"
	default:
		return "unknown"
	}
}

// Message is a normalised chat message.
type Message struct {
	Type MessageType
	Text string
	URLs []string
}

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	nonSpotifyMusicDomains = map[string]bool{
		"youtube.com":     true,
		"youtu.be":        true,
		"music.apple.com": true,
		"soundcloud.com":  true,
		"bandcamp.com":    true,
		"tidal.com":       true,
		"deezer.com":      true,
	}
)

// Parser normalises and classifies message text.
type Parser struct {
	shortHosts map[string]bool
}

// NewParser creates a parser that treats links on shortHosts as track links.
// Without hosts the default Spotify short-link hosts are used.
func NewParser(shortHosts ...string) *Parser {
	if len(shortHosts) == 0 {
		shortHosts = musiclink.DefaultShortHosts
	}

	hosts := make(map[string]bool, len(shortHosts))
	for _, h := range shortHosts {
		hosts[strings.ToLower(h)] = true
	}

	return &Parser{shortHosts: hosts}
}

// ParseMessage normalises text and classifies it.
func (p *Parser) ParseMessage(text string) Message {
	text = Normalize(text)
	urls := ExtractURLs(text)

	return Message{
		Type: p.classifyMessage(urls),
		Text: text,
		URLs: urls,
	}
}

// Normalize applies NFKC and collapses all whitespace runs to single spaces.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractURLs returns the cleaned http(s) URLs found in text.
func ExtractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	cleanURLs := make([]string, 0, len(matches))

	for _, match := range matches {
		if cleanURL := CleanURL(match); cleanURL != "" {
			cleanURLs = append(cleanURLs, cleanURL)
		}
	}

	return cleanURLs
}

// CleanURL strips trailing punctuation and tracking parameters. It returns ""
// for anything that is not an absolute http(s) URL.
func CleanURL(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, ".,!?;)")

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	q := u.Query()
	for _, param := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "si"} {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func (p *Parser) classifyMessage(urls []string) MessageType {
	for _, u := range urls {
		if p.isTrackURL(u) {
			return MessageTypeTrackLink
		}
	}

	for _, u := range urls {
		if isMusicURL(u) {
			return MessageTypeOtherLink
		}
	}

	return MessageTypeFreeText
}

func (p *Parser) isTrackURL(rawURL string) bool {
	if _, ok := musiclink.ParseTrackURL(rawURL); ok {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return p.shortHosts[strings.ToLower(u.Host)] && len(strings.Trim(u.Path, "/")) > 0
}

func isMusicURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	hostname := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch hostname {
	case "m.youtube.com", "music.youtube.com":
		hostname = "youtube.com"
	case "listen.tidal.com":
		hostname = "tidal.com"
	}

	if nonSpotifyMusicDomains[hostname] {
		return true
	}

	// artist.bandcamp.com
	return strings.HasSuffix(hostname, ".bandcamp.com")
}
