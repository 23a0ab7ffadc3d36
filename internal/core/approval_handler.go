package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"queuevote/internal/chat"
	"queuevote/pkg/musiclink"
)

// Approval Workflow
// A private track request becomes a voting card in the voting scope. The
// first Accept or Decline on a card decides it; the card is then edited into
// its terminal state without buttons.

// submitTrackRequest resolves the link in ev, looks the track up and posts a voting card.
func (d *Dispatcher) submitTrackRequest(ctx context.Context, ev *chat.Event) {
	if d.flood != nil && !d.flood.CheckMessage(ev.Scope.ChatID, ev.Actor.ID) {
		d.logger.Info("Track request rate limited",
			zap.String("eventID", ev.ID),
			zap.Int64("userID", ev.Actor.ID))
		d.metrics.RecordTrackRequest("rate_limited")
		d.reply(ctx, ev, d.localizer.T("request.flood", d.config.App.FloodLimitPerMinute))
		return
	}

	msg := d.parser.ParseMessage(ev.Text)
	ref, err := d.resolver.Resolve(ctx, msg.Text)
	if err != nil {
		d.logger.Info("Failed to resolve track link",
			zap.String("eventID", ev.ID),
			zap.String("text", msg.Text),
			zap.Error(err))
		d.metrics.RecordTrackRequest("invalid_link")
		d.reply(ctx, ev, d.localizer.T("request.failed"))
		return
	}

	track, err := d.catalog.Track(ctx, ref.ID)
	if err != nil {
		d.logger.Error("Failed to get track info",
			zap.String("eventID", ev.ID),
			zap.String("trackID", ref.ID),
			zap.Error(err))
		d.metrics.RecordTrackRequest("lookup_failed")
		d.metrics.RecordError("catalog", "track")
		d.reply(ctx, ev, d.localizer.T("request.failed"))
		return
	}

	card := newVotingCard(d.localizer, ev.Actor.DisplayName, ref, track)
	cardID, err := d.frontend.SendMessage(ctx, &chat.OutboundMessage{
		Scope:   d.votingScope,
		Text:    card.Text,
		HTML:    true,
		Buttons: card.Buttons,
	})
	if err != nil {
		d.logger.Error("Failed to post voting card",
			zap.String("eventID", ev.ID),
			zap.String("trackID", ref.ID),
			zap.Error(err))
		d.metrics.RecordTrackRequest("card_failed")
		d.metrics.RecordError("frontend", "send")
		d.reply(ctx, ev, d.localizer.T("request.failed"))
		return
	}

	d.reply(ctx, ev, d.localizer.T("request.confirm", ref.URL()))

	d.logger.Info("Voting card posted",
		zap.String("eventID", ev.ID),
		zap.String("trackID", ref.ID),
		zap.String("requester", card.Requester),
		zap.Int("messageID", cardID))
	d.metrics.RecordTrackRequest("posted")
}

// handleCallback decides a voting card. Accept and Decline presses are
// answered; unrecognized payloads get no reply at all.
func (d *Dispatcher) handleCallback(ctx context.Context, ev *chat.Event) {
	action := ParseCallbackAction(ev.CallbackData)
	answer := ""

	switch action.Kind {
	case ActionAccept:
		answer = d.acceptTrack(ctx, ev, action)
	case ActionDecline:
		answer = d.declineTrack(ctx, ev)
	default:
		d.logger.Debug("Ignoring unrecognized callback payload",
			zap.String("eventID", ev.ID),
			zap.String("payload", action.Raw))
		d.metrics.RecordVote(action.Kind.String(), "ignored")
		return
	}

	if ev.CallbackID == "" {
		return
	}
	if err := d.frontend.AnswerCallback(ctx, ev.CallbackID, answer); err != nil {
		d.logger.Debug("Failed to answer callback",
			zap.String("eventID", ev.ID),
			zap.Error(err))
	}
}

// acceptTrack queues the card's track and returns the callback answer text.
func (d *Dispatcher) acceptTrack(ctx context.Context, ev *chat.Event, action CallbackAction) string {
	key := claimKey(ev)
	if !d.claims.TryClaim(key) {
		d.metrics.RecordVote("accept", "duplicate")
		return d.localizer.T("vote.already_handled")
	}

	if action.Track == nil || !musiclink.ValidTrackID(action.Track.ID) {
		d.logger.Warn("Accept payload without valid track",
			zap.String("eventID", ev.ID),
			zap.String("payload", action.Raw),
			zap.Error(ErrInvalidCatalogURI))
		d.metrics.RecordVote("accept", "invalid")
		d.finishCard(ctx, ev, d.localizer.T("vote.invalid_track"))
		return ""
	}

	if err := d.catalog.QueueTrack(ctx, action.Track.ID); err != nil {
		d.claims.Release(key)
		d.logger.Error("Failed to queue track",
			zap.String("eventID", ev.ID),
			zap.String("trackID", action.Track.ID),
			zap.Error(err))
		d.metrics.RecordVote("accept", "queue_failed")
		d.metrics.RecordError("catalog", "queue")
		text := d.localizer.T("vote.queue_failed", err.Error())
		if ev.Origin != nil && ev.Origin.Text != "" {
			// drop the note of an earlier failed attempt
			card, _, _ := strings.Cut(ev.Origin.Text, "\n\n")
			text = card + "\n\n" + text
		}
		// the card stays open so the track can be accepted again
		d.updateCard(ctx, ev, text, voteButtons(d.localizer, *action.Track))
		return ""
	}

	d.logger.Info("Track accepted",
		zap.String("eventID", ev.ID),
		zap.String("trackID", action.Track.ID),
		zap.String("by", ev.Actor.DisplayName))
	d.metrics.RecordVote("accept", "success")
	d.finishCard(ctx, ev, d.localizer.T("vote.accepted", ev.Actor.DisplayName, action.Track.URL()))
	return ""
}

// declineTrack closes the card without touching the queue.
func (d *Dispatcher) declineTrack(ctx context.Context, ev *chat.Event) string {
	if !d.claims.TryClaim(claimKey(ev)) {
		d.metrics.RecordVote("decline", "duplicate")
		return d.localizer.T("vote.already_handled")
	}

	text := d.localizer.T("vote.declined_bare", ev.Actor.DisplayName)
	if ev.Origin != nil && ev.Origin.Text != "" {
		text = d.localizer.T("vote.declined", ev.Actor.DisplayName, ev.Origin.Text)
	}

	d.logger.Info("Track declined",
		zap.String("eventID", ev.ID),
		zap.String("by", ev.Actor.DisplayName))
	d.metrics.RecordVote("decline", "success")
	d.finishCard(ctx, ev, text)
	return ""
}

// claimKey identifies the card a button belongs to.
func claimKey(ev *chat.Event) string {
	chatID, messageID := ev.Scope.ChatID, ev.MessageID
	if ev.Origin != nil {
		chatID, messageID = ev.Origin.ChatID, ev.Origin.MessageID
	}
	return fmt.Sprintf("%d:%d", chatID, messageID)
}
