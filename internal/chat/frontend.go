// Package chat provides a transport-neutral view of chat events and outbound operations.
package chat

import (
	"context"
)

// Scope identifies a chat and, optionally, a thread (topic) inside it.
// ThreadID 0 means the chat has no thread.
type Scope struct {
	ChatID   int64
	ThreadID int
}

// EventKind classifies inbound events.
type EventKind int

const (
	// EventText is a plain text message
	EventText EventKind = iota
	// EventCommand is a message starting with a slash command
	EventCommand
	// EventCallback is an inline button press
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	case EventCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// User is the acting user of an event.
type User struct {
	ID          int64
	DisplayName string
}

// Event represents a normalized inbound event from the transport
type Event struct {
	ID      string // correlation id, assigned on receipt
	Kind    EventKind
	Scope   Scope
	Private bool // one-to-one conversation with the bot
	Actor   User

	// MessageID is the message of a text or command event, or the message
	// holding the pressed button of a callback.
	MessageID   int
	Text        string
	Command     string // lowercased, without slash and bot mention
	CommandArgs string

	// Callback fields
	CallbackID   string
	CallbackData string
	// Origin is the message the pressed button belongs to; nil when the
	// transport reports it as inaccessible.
	Origin *OriginMessage
}

// OriginMessage is the message a callback button was attached to.
type OriginMessage struct {
	ChatID    int64
	MessageID int
	Text      string
}

// Button is a labeled inline action carrying an opaque payload.
type Button struct {
	Label   string
	Payload string
}

// OutboundMessage describes a message to send.
type OutboundMessage struct {
	Scope          Scope
	ReplyTo        int // message id, 0 for none
	Text           string
	HTML           bool
	DisablePreview bool
	Buttons        [][]Button
}

// MessageEdit replaces the text and buttons of an existing message.
// A nil Buttons slice removes the keyboard.
type MessageEdit struct {
	ChatID         int64
	MessageID      int
	Text           string
	HTML           bool
	DisablePreview bool
	Buttons        [][]Button
}

// Handler processes one inbound event.
type Handler func(ctx context.Context, ev *Event)

// Frontend defines the interface of a chat transport
type Frontend interface {
	// Start initializes the transport
	Start(ctx context.Context) error

	// Listen blocks delivering events to handler until ctx is done
	Listen(ctx context.Context, handler Handler) error

	// SendMessage sends a message and returns its id
	SendMessage(ctx context.Context, msg *OutboundMessage) (int, error)

	// EditMessage edits a previously sent message in place
	EditMessage(ctx context.Context, edit *MessageEdit) error

	// AnswerCallback acknowledges a button press, optionally with a toast text
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
