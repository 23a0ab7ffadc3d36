// Package telegram provides Telegram Bot API integration using go-telegram/bot library.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"queuevote/internal/chat"
)

const unknownUser = "Unknown"

// ErrDisabled is returned by operations on a disabled frontend.
var ErrDisabled = errors.New("telegram frontend is disabled")

// Config holds Telegram-specific configuration
type Config struct {
	BotToken string
	Enabled  bool
	// VotingChatID is verified for access on start
	VotingChatID int64
}

// Frontend implements the chat.Frontend interface for Telegram
type Frontend struct {
	config  *Config
	logger  *zap.Logger
	bot     *bot.Bot
	handler chat.Handler
}

// NewFrontend creates a new Telegram frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	return &Frontend{
		config: config,
		logger: logger,
	}
}

// Start initializes the Telegram bot
func (f *Frontend) Start(ctx context.Context) error {
	if !f.config.Enabled {
		f.logger.Info("Telegram frontend is disabled, skipping initialization")
		return nil
	}

	f.logger.Info("Starting Telegram frontend",
		zap.Int64("voting_chat_id", f.config.VotingChatID))

	b, err := bot.New(f.config.BotToken, bot.WithDefaultHandler(f.handleUpdate))
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	f.bot = b

	if err := f.verifyChatAccess(ctx); err != nil {
		return fmt.Errorf("failed to verify voting chat access: %w", err)
	}

	f.logger.Info("Telegram frontend started successfully")
	return nil
}

// Listen polls for updates until ctx is done
func (f *Frontend) Listen(ctx context.Context, handler chat.Handler) error {
	if !f.config.Enabled {
		<-ctx.Done()
		return nil
	}

	f.handler = handler
	f.bot.Start(ctx)

	return nil
}

// SendMessage sends a message to the given scope
func (f *Frontend) SendMessage(ctx context.Context, msg *chat.OutboundMessage) (int, error) {
	if !f.config.Enabled {
		return 0, ErrDisabled
	}

	sent, err := f.bot.SendMessage(ctx, buildSendParams(msg))
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	return sent.ID, nil
}

// EditMessage replaces text and keyboard of an existing message
func (f *Frontend) EditMessage(ctx context.Context, edit *chat.MessageEdit) error {
	if !f.config.Enabled {
		return ErrDisabled
	}

	if _, err := f.bot.EditMessageText(ctx, buildEditParams(edit)); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

// AnswerCallback acknowledges a callback query
func (f *Frontend) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if !f.config.Enabled {
		return ErrDisabled
	}

	if _, err := f.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}

	return nil
}

// handleUpdate converts incoming Telegram updates and forwards them
func (f *Frontend) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	ev := convertUpdate(update)
	if ev == nil {
		return
	}

	if f.handler != nil {
		f.handler(ctx, ev)
	}
}

// verifyChatAccess checks if the bot has access to the voting chat
func (f *Frontend) verifyChatAccess(ctx context.Context) error {
	c, err := f.bot.GetChat(ctx, &bot.GetChatParams{
		ChatID: f.config.VotingChatID,
	})
	if err != nil {
		return fmt.Errorf("cannot access chat %d: %w", f.config.VotingChatID, err)
	}

	f.logger.Info("Bot has access to voting chat",
		zap.String("chat_title", c.Title),
		zap.String("chat_type", string(c.Type)))

	return nil
}

// convertUpdate maps an update to a chat event; nil for updates the bot ignores
func convertUpdate(update *models.Update) *chat.Event {
	switch {
	case update.CallbackQuery != nil:
		return convertCallback(update.CallbackQuery)
	case update.Message != nil:
		return convertMessage(update.Message)
	default:
		return nil
	}
}

func convertMessage(msg *models.Message) *chat.Event {
	if msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return nil
	}

	ev := &chat.Event{
		ID:        uuid.NewString(),
		Kind:      chat.EventText,
		Scope:     chat.Scope{ChatID: msg.Chat.ID, ThreadID: msg.MessageThreadID},
		Private:   msg.Chat.Type == models.ChatTypePrivate,
		Actor:     chat.User{ID: msg.From.ID, DisplayName: getUserDisplayName(msg.From)},
		MessageID: msg.ID,
		Text:      msg.Text,
	}

	if command, args, ok := parseCommand(msg.Text); ok {
		ev.Kind = chat.EventCommand
		ev.Command = command
		ev.CommandArgs = args
	}

	return ev
}

func convertCallback(q *models.CallbackQuery) *chat.Event {
	ev := &chat.Event{
		ID:           uuid.NewString(),
		Kind:         chat.EventCallback,
		Actor:        chat.User{ID: q.From.ID, DisplayName: getUserDisplayName(&q.From)},
		CallbackID:   q.ID,
		CallbackData: q.Data,
	}

	switch {
	case q.Message.Message != nil:
		m := q.Message.Message
		ev.Scope = chat.Scope{ChatID: m.Chat.ID, ThreadID: m.MessageThreadID}
		ev.Private = m.Chat.Type == models.ChatTypePrivate
		ev.MessageID = m.ID
		ev.Origin = &chat.OriginMessage{ChatID: m.Chat.ID, MessageID: m.ID, Text: m.Text}
	case q.Message.InaccessibleMessage != nil:
		ev.Scope = chat.Scope{ChatID: q.Message.InaccessibleMessage.Chat.ID}
		ev.MessageID = q.Message.InaccessibleMessage.MessageID
	}

	return ev
}

// parseCommand splits "/cmd@bot args" into its parts
func parseCommand(text string) (command, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}

	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// getUserDisplayName creates a display name like "Jane (@jane)" from first name and username
func getUserDisplayName(user *models.User) string {
	if user == nil || user.FirstName == "" && user.Username == "" {
		return unknownUser
	}

	name := user.FirstName
	switch {
	case user.Username == "":
		return name
	case name == "":
		return "@" + user.Username
	default:
		return fmt.Sprintf("%s (@%s)", name, user.Username)
	}
}

func buildSendParams(msg *chat.OutboundMessage) *bot.SendMessageParams {
	params := &bot.SendMessageParams{
		ChatID:          msg.Scope.ChatID,
		MessageThreadID: msg.Scope.ThreadID,
		Text:            msg.Text,
	}

	if msg.HTML {
		params.ParseMode = models.ParseModeHTML
	}

	if msg.DisablePreview {
		disabled := true
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
	}

	if msg.ReplyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: msg.ReplyTo}
	}

	if len(msg.Buttons) > 0 {
		params.ReplyMarkup = buildKeyboard(msg.Buttons)
	}

	return params
}

func buildEditParams(edit *chat.MessageEdit) *bot.EditMessageTextParams {
	params := &bot.EditMessageTextParams{
		ChatID:    edit.ChatID,
		MessageID: edit.MessageID,
		Text:      edit.Text,
		// an empty keyboard removes the buttons
		ReplyMarkup: buildKeyboard(edit.Buttons),
	}

	if edit.HTML {
		params.ParseMode = models.ParseModeHTML
	}

	if edit.DisablePreview {
		disabled := true
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
	}

	return params
}

func buildKeyboard(rows [][]chat.Button) *models.InlineKeyboardMarkup {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Payload,
			})
		}
		keyboard = append(keyboard, buttons)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
