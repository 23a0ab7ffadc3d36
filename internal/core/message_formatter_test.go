package core

import (
	"strings"
	"testing"
	"time"

	"queuevote/internal/i18n"
	"queuevote/pkg/musiclink"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{212 * time.Second, "3:32"},
		{212*time.Second + 600*time.Millisecond, "3:33"},
		{61 * time.Minute, "61:00"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewVotingCard(t *testing.T) {
	localizer := i18n.NewLocalizer("en")
	ref := musiclink.TrackRef{ID: "abc123"}
	track := &TrackMetadata{
		Name:       "Rock & Roll",
		Artists:    []string{"A", "B"},
		Album:      "<Live>",
		Popularity: 80,
		Duration:   125 * time.Second,
		CoverURLs:  []string{"https://i.scdn.co/image/1?a=1&b=2", "https://i.scdn.co/image/2"},
	}

	card := newVotingCard(localizer, "Jane <@jane>", ref, track)

	wantLines := []string{
		"Request from Jane &lt;@jane&gt;:",
		"🎵 <b>Rock &amp; Roll</b>",
		"👥 <b>A, B</b>",
		"💿 <b>&lt;Live&gt;</b>",
		"🔥 80 • ⏱️ 2:05",
		`<a href="https://open.spotify.com/track/abc123">Listen</a> • <a href="https://i.scdn.co/image/1?a=1&amp;b=2">Cover</a>`,
	}
	if got := strings.Split(card.Text, "\n"); strings.Join(got, "\n") != strings.Join(wantLines, "\n") {
		t.Errorf("card text =\n%s\nwant\n%s", card.Text, strings.Join(wantLines, "\n"))
	}

	if card.Requester != "Jane <@jane>" || card.Track != ref {
		t.Errorf("card identity = %q %v", card.Requester, card.Track)
	}
	if len(card.Buttons) != 1 || len(card.Buttons[0]) != 2 {
		t.Fatalf("Buttons = %v", card.Buttons)
	}
	if card.Buttons[0][0].Label != "✅ Queue" || card.Buttons[0][1].Label != "❌ Delete" {
		t.Errorf("button labels = %q %q", card.Buttons[0][0].Label, card.Buttons[0][1].Label)
	}
}

func TestFormatTrackHTMLWithoutOptionalFields(t *testing.T) {
	localizer := i18n.NewLocalizer("en")
	track := &TrackMetadata{
		Name:     "Song",
		Artists:  []string{"Solo"},
		URL:      "https://open.spotify.com/track/xyz",
		Duration: 3 * time.Minute,
	}

	got := formatTrackHTML(localizer, musiclink.TrackRef{ID: "xyz"}, track)

	if strings.Contains(got, "💿") {
		t.Errorf("album line rendered without album: %s", got)
	}
	if strings.Contains(got, "Cover") {
		t.Errorf("cover link rendered without covers: %s", got)
	}
	if !strings.HasSuffix(got, `<a href="https://open.spotify.com/track/xyz">Listen</a>`) {
		t.Errorf("unexpected link line: %s", got)
	}
}
