package core

import (
	"context"

	"go.uber.org/zap"

	"queuevote/internal/chat"
	"queuevote/internal/dialogue"
)

// handleLogin starts the Spotify login dialogue for the acting user.
func (d *Dispatcher) handleLogin(ctx context.Context, ev *chat.Event) {
	authURL, err := d.auth.BeginLogin(ev.Actor.ID)
	if err != nil {
		d.logger.Error("Failed to create Spotify authorization URL",
			zap.String("eventID", ev.ID),
			zap.Error(err))
		d.metrics.RecordError("login", "auth_url")
		d.reply(ctx, ev, d.localizer.T("login.error", err.Error()))
		return
	}

	d.dialogues.Set(ev.Actor.ID, dialogue.StateAwaitingAuthCode)
	d.logger.Info("Spotify login started",
		zap.String("eventID", ev.ID),
		zap.Int64("userID", ev.Actor.ID))

	d.reply(ctx, ev, d.localizer.T("login.prompt", authURL))
}

// handleLoginCompletion consumes the text following a login prompt. The user
// returns to Start whatever the text holds. When another event of the same
// user completed the dialogue first, ev is routed as in Start.
func (d *Dispatcher) handleLoginCompletion(ctx context.Context, ev *chat.Event) {
	if !d.dialogues.CompareAndSwap(ev.Actor.ID, dialogue.StateAwaitingAuthCode, dialogue.StateStart) {
		d.dispatch(ctx, ev, d.routeMessage(ev, false))
		return
	}

	code, ok := d.auth.ParseResponseCode(ev.Actor.ID, ev.Text)
	if !ok {
		d.logger.Info("Invalid Spotify authorization response",
			zap.String("eventID", ev.ID),
			zap.Int64("userID", ev.Actor.ID))
		d.reply(ctx, ev, d.localizer.T("login.invalid"))
		return
	}

	if err := d.auth.Exchange(ctx, code); err != nil {
		d.logger.Error("Spotify token exchange failed",
			zap.String("eventID", ev.ID),
			zap.Error(err))
		d.metrics.RecordError("login", "exchange")
		d.reply(ctx, ev, d.localizer.T("login.failed", err.Error()))
		return
	}

	d.logger.Info("Spotify login completed",
		zap.String("eventID", ev.ID),
		zap.Int64("userID", ev.Actor.ID))
	d.reply(ctx, ev, d.localizer.T("login.saved"))
}
