package core

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"queuevote/internal/chat"
	"queuevote/internal/i18n"
	"queuevote/pkg/musiclink"
)

// newVotingCard renders the voting card for a requested track.
func newVotingCard(localizer *i18n.Localizer, requester string, ref musiclink.TrackRef,
	track *TrackMetadata) *VotingCard {
	var b strings.Builder

	b.WriteString(html.EscapeString(localizer.T("vote.card_header", requester)))
	b.WriteString("\n")
	b.WriteString(formatTrackHTML(localizer, ref, track))

	return &VotingCard{
		Requester: requester,
		Track:     ref,
		Text:      b.String(),
		Buttons:   voteButtons(localizer, ref),
	}
}

// voteButtons is the Accept/Decline keyboard of a card for ref.
func voteButtons(localizer *i18n.Localizer, ref musiclink.TrackRef) [][]chat.Button {
	return [][]chat.Button{{
		{Label: localizer.T("button.accept"), Payload: AcceptPayload(ref)},
		{Label: localizer.T("button.decline"), Payload: DeclinePayload()},
	}}
}

// formatTrackHTML renders track metadata as Telegram HTML.
func formatTrackHTML(localizer *i18n.Localizer, ref musiclink.TrackRef, track *TrackMetadata) string {
	lines := []string{
		"🎵 <b>" + html.EscapeString(track.Name) + "</b>",
		"👥 <b>" + html.EscapeString(strings.Join(track.Artists, ", ")) + "</b>",
	}
	if track.Album != "" {
		lines = append(lines, "💿 <b>"+html.EscapeString(track.Album)+"</b>")
	}
	lines = append(lines, fmt.Sprintf("🔥 %d • ⏱️ %s", track.Popularity, formatDuration(track.Duration)))

	listenURL := track.URL
	if listenURL == "" {
		listenURL = ref.URL()
	}
	links := []string{formatLink(listenURL, localizer.T("track.listen"))}
	if len(track.CoverURLs) > 0 {
		links = append(links, formatLink(track.CoverURLs[0], localizer.T("track.cover")))
	}
	lines = append(lines, strings.Join(links, " • "))

	return strings.Join(lines, "\n")
}

func formatLink(href, label string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(label))
}

// formatDuration renders d as m:ss.
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// reply answers an event in its own chat and thread.
func (d *Dispatcher) reply(ctx context.Context, ev *chat.Event, text string) {
	msg := &chat.OutboundMessage{
		Scope:   ev.Scope,
		ReplyTo: ev.MessageID,
		Text:    text,
	}
	if _, err := d.frontend.SendMessage(ctx, msg); err != nil {
		d.logger.Error("Failed to send reply",
			zap.String("eventID", ev.ID),
			zap.Int64("chatID", ev.Scope.ChatID),
			zap.Error(err))
		d.metrics.RecordError("frontend", "send")
	}
}

// finishCard puts a voting card into its terminal state without buttons.
func (d *Dispatcher) finishCard(ctx context.Context, ev *chat.Event, text string) {
	d.updateCard(ctx, ev, text, nil)
}

// updateCard replaces the text and keyboard of a voting card. When the card
// cannot be edited the text is posted into the voting scope instead.
func (d *Dispatcher) updateCard(ctx context.Context, ev *chat.Event, text string, buttons [][]chat.Button) {
	if ev.Origin != nil {
		edit := &chat.MessageEdit{
			ChatID:         ev.Origin.ChatID,
			MessageID:      ev.Origin.MessageID,
			Text:           text,
			DisablePreview: true,
			Buttons:        buttons,
		}
		err := d.frontend.EditMessage(ctx, edit)
		if err == nil {
			return
		}
		d.logger.Warn("Failed to edit voting card, posting a new message",
			zap.String("eventID", ev.ID),
			zap.Int("messageID", ev.Origin.MessageID),
			zap.Error(err))
		d.metrics.RecordError("frontend", "edit")
	}

	msg := &chat.OutboundMessage{
		Scope:          d.votingScope,
		Text:           text,
		DisablePreview: true,
		Buttons:        buttons,
	}
	if _, err := d.frontend.SendMessage(ctx, msg); err != nil {
		d.logger.Error("Failed to post vote result",
			zap.String("eventID", ev.ID),
			zap.Error(err))
		d.metrics.RecordError("frontend", "send")
	}
}
