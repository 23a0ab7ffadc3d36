package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"queuevote/internal/chat"
	"queuevote/internal/dialogue"
	"queuevote/internal/i18n"
	"queuevote/pkg/text"
)

// ErrDispatcherStopped is returned for events arriving after Stop.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Dispatcher routes chat events to the login, track request and vote handlers.
// Each event runs as its own task on a bounded task group.
type Dispatcher struct {
	config      *Config
	frontend    chat.Frontend
	catalog     Catalog
	auth        Authorizer
	resolver    LinkResolver
	dialogues   DialogueStore
	claims      ClaimStore
	flood       FloodGate
	metrics     Metrics
	logger      *zap.Logger
	localizer   *i18n.Localizer
	parser      *text.Parser
	votingScope chat.Scope

	tasks   errgroup.Group
	mu      sync.RWMutex
	stopped bool
}

// DispatcherOption configures optional dispatcher collaborators.
type DispatcherOption func(*Dispatcher)

// WithFloodGate limits track requests per chat member.
func WithFloodGate(flood FloodGate) DispatcherOption {
	return func(d *Dispatcher) {
		d.flood = flood
	}
}

// WithMetrics records dispatcher activity.
func WithMetrics(metrics Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// NewDispatcher creates a dispatcher for the voting scope configured in config.
func NewDispatcher(
	config *Config,
	frontend chat.Frontend,
	catalog Catalog,
	auth Authorizer,
	resolver LinkResolver,
	dialogues DialogueStore,
	claims ClaimStore,
	logger *zap.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		config:    config,
		frontend:  frontend,
		catalog:   catalog,
		auth:      auth,
		resolver:  resolver,
		dialogues: dialogues,
		claims:    claims,
		metrics:   nopMetrics{},
		logger:    logger,
		localizer: i18n.NewLocalizer(config.App.Language),
		parser:    text.NewParser(config.Spotify.ShortHosts...),
		votingScope: chat.Scope{
			ChatID:   config.Telegram.VotingChatID,
			ThreadID: config.Telegram.VotingThreadID,
		},
	}

	for _, opt := range opts {
		opt(d)
	}

	d.tasks.SetLimit(config.App.MaxConcurrentEvents)
	return d
}

// Start initializes the frontend and blocks delivering its events until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting event dispatcher",
		zap.Int64("votingChatID", d.votingScope.ChatID),
		zap.Int("votingThreadID", d.votingScope.ThreadID))

	if err := d.frontend.Start(ctx); err != nil {
		return fmt.Errorf("failed to start chat frontend: %w", err)
	}

	return d.frontend.Listen(ctx, func(ctx context.Context, ev *chat.Event) {
		if err := d.HandleEvent(ctx, ev); err != nil {
			d.logger.Debug("Event dropped", zap.String("eventID", ev.ID), zap.Error(err))
		}
	})
}

// Stop stops accepting events and waits for in-flight events until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.logger.Info("Stopping event dispatcher")

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = d.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("in-flight events not drained: %w", ctx.Err())
	}
}

// HandleEvent schedules ev on the task group. It blocks while the group is full.
// The event task outlives ctx cancellation and is bounded by the event timeout.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev *chat.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	taskCtx := context.WithoutCancel(ctx)
	d.tasks.Go(func() error {
		ctx, cancel := context.WithTimeout(taskCtx, d.config.App.EventTimeout)
		defer cancel()

		d.processEvent(ctx, ev)
		return nil
	})

	return nil
}

// processEvent routes and handles one event. Panics are contained to the event.
func (d *Dispatcher) processEvent(ctx context.Context, ev *chat.Event) {
	start := time.Now()
	r := routeIgnore

	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Panic while handling event",
				zap.String("eventID", ev.ID),
				zap.Stringer("route", r),
				zap.Any("panic", p),
				zap.Stack("stack"))
			d.metrics.RecordError("dispatcher", "panic")
			d.replyPanic(ctx, ev, r)
		}
		d.metrics.RecordProcessingTime(r.String(), time.Since(start))
	}()

	r = d.routeEvent(ev)

	d.logger.Debug("Handling event",
		zap.String("eventID", ev.ID),
		zap.Stringer("kind", ev.Kind),
		zap.Stringer("route", r),
		zap.Int64("chatID", ev.Scope.ChatID),
		zap.Int("threadID", ev.Scope.ThreadID),
		zap.Int64("userID", ev.Actor.ID))
	d.metrics.RecordEvent(ev.Kind.String(), r.String())

	d.dispatch(ctx, ev, r)
}

// replyPanic tells the sender of a routed message that handling failed.
// Callbacks and unrouted events get no reply.
func (d *Dispatcher) replyPanic(ctx context.Context, ev *chat.Event, r route) {
	if r == routeIgnore || r == routeCallback {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Panic while reporting failure", zap.String("eventID", ev.ID), zap.Any("panic", p))
		}
	}()
	d.reply(ctx, ev, d.localizer.T("error.generic"))
}

func (d *Dispatcher) dispatch(ctx context.Context, ev *chat.Event, r route) {
	switch r {
	case routeCallback:
		d.handleCallback(ctx, ev)
	case routeLogin:
		d.handleLogin(ctx, ev)
	case routeLoginComplete:
		d.handleLoginCompletion(ctx, ev)
	case routeHelp:
		d.reply(ctx, ev, d.localizer.T("bot.help"))
	case routeID:
		d.replyID(ctx, ev)
	case routeTrackRequest:
		d.submitTrackRequest(ctx, ev)
	case routeUnsupported:
		d.metrics.RecordTrackRequest("unsupported")
		d.reply(ctx, ev, d.localizer.T("request.unsupported"))
	case routeUsage:
		d.reply(ctx, ev, d.localizer.T("bot.usage"))
	case routeIgnore:
	}
}

// routeEvent picks the single handler for ev. First match wins:
// callbacks from the voting chat, the voting scope's login dialogue,
// user commands, then private track requests.
func (d *Dispatcher) routeEvent(ev *chat.Event) route {
	if ev.Kind == chat.EventCallback {
		return d.routeButtonPress(ev)
	}

	awaiting := ev.Scope == d.votingScope &&
		d.dialogues.Get(ev.Actor.ID) == dialogue.StateAwaitingAuthCode
	return d.routeMessage(ev, awaiting)
}

func (d *Dispatcher) routeButtonPress(ev *chat.Event) route {
	if ev.Scope.ChatID != d.votingScope.ChatID {
		d.logger.Debug("Ignoring callback from foreign chat",
			zap.String("eventID", ev.ID),
			zap.Error(ErrPermissionDenied),
			zap.Int64("chatID", ev.Scope.ChatID))
		return routeIgnore
	}
	return routeCallback
}

func (d *Dispatcher) routeMessage(ev *chat.Event, awaitingAuthCode bool) route {
	inVotingScope := ev.Scope == d.votingScope

	if inVotingScope {
		if awaitingAuthCode {
			return routeLoginComplete
		}
		if ev.Kind == chat.EventCommand && ev.Command == commandLogin {
			return routeLogin
		}
	}

	if ev.Kind == chat.EventCommand {
		switch ev.Command {
		case commandHelp:
			return routeHelp
		case commandID:
			return routeID
		}
		if ev.Private && !inVotingScope {
			return routeUsage
		}
		return routeIgnore
	}

	if inVotingScope {
		return routeIgnore
	}

	msg := d.parser.ParseMessage(ev.Text)
	if !ev.Private {
		if msg.Type == text.MessageTypeTrackLink && ev.Scope.ChatID != d.votingScope.ChatID {
			return routeUsage
		}
		return routeIgnore
	}

	switch msg.Type {
	case text.MessageTypeTrackLink:
		return routeTrackRequest
	case text.MessageTypeOtherLink:
		return routeUnsupported
	default:
		return routeUsage
	}
}

func (d *Dispatcher) replyID(ctx context.Context, ev *chat.Event) {
	if ev.Scope.ThreadID != 0 {
		d.reply(ctx, ev, d.localizer.T("bot.id_thread", ev.Scope.ChatID, ev.Scope.ThreadID))
		return
	}
	d.reply(ctx, ev, d.localizer.T("bot.id_chat", ev.Scope.ChatID))
}
