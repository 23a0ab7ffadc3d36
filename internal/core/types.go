package core

import (
	"context"
	"time"

	"queuevote/internal/dialogue"
	"queuevote/pkg/musiclink"
)

// TrackMetadata is the catalog view of a track used to compose a voting card.
type TrackMetadata struct {
	ID         string
	Name       string
	Artists    []string
	Album      string
	Popularity int
	Duration   time.Duration
	URL        string   // listen URL, may be empty
	CoverURLs  []string // album images, largest first
}

// CallbackActionKind discriminates decoded button payloads.
type CallbackActionKind int

const (
	// ActionUnrecognized is any payload the bot did not produce
	ActionUnrecognized CallbackActionKind = iota
	// ActionAccept queues the track
	ActionAccept
	// ActionDecline rejects the request
	ActionDecline
)

func (k CallbackActionKind) String() string {
	switch k {
	case ActionAccept:
		return "accept"
	case ActionDecline:
		return "decline"
	default:
		return "unrecognized"
	}
}

// CallbackAction is a decoded button payload. Track is only set for ActionAccept
// when the payload carried a parseable URN; Raw keeps the payload for logging.
type CallbackAction struct {
	Kind  CallbackActionKind
	Track *musiclink.TrackRef
	Raw   string
}

// Catalog looks up tracks and appends them to the playback queue.
type Catalog interface {
	Track(ctx context.Context, trackID string) (*TrackMetadata, error)
	QueueTrack(ctx context.Context, trackID string) error
}

// Authorizer drives the OAuth login dialogue.
type Authorizer interface {
	// BeginLogin starts a login of userID and returns the authorization URL to open.
	BeginLogin(userID int64) (string, error)
	// ParseResponseCode extracts the authorization code from a redirect URL
	// pasted by userID. It only accepts the redirect of that user's login.
	ParseResponseCode(userID int64, text string) (string, bool)
	// Exchange trades the code for a token and persists it.
	Exchange(ctx context.Context, code string) error
}

// LinkResolver turns chat text into a track reference.
type LinkResolver interface {
	Resolve(ctx context.Context, text string) (musiclink.TrackRef, error)
	CanResolve(text string) bool
}

// DialogueStore keeps per-user dialogue state with atomic per-user transitions.
type DialogueStore interface {
	Get(userID int64) dialogue.State
	Set(userID int64, state dialogue.State)
	CompareAndSwap(userID int64, from, to dialogue.State) bool
}

// ClaimStore hands out one-shot claims on voting cards.
type ClaimStore interface {
	TryClaim(key string) bool
	Release(key string)
}

// FloodGate limits how often a chat member may request tracks.
type FloodGate interface {
	CheckMessage(chatID, userID int64) bool
}

// Metrics records dispatcher activity.
type Metrics interface {
	RecordEvent(kind, route string)
	RecordTrackRequest(status string)
	RecordVote(decision, status string)
	RecordError(component, errorType string)
	RecordProcessingTime(route string, duration time.Duration)
}

// nopMetrics discards all measurements.
type nopMetrics struct{}

func (nopMetrics) RecordEvent(string, string)                 {}
func (nopMetrics) RecordTrackRequest(string)                  {}
func (nopMetrics) RecordVote(string, string)                  {}
func (nopMetrics) RecordError(string, string)                 {}
func (nopMetrics) RecordProcessingTime(string, time.Duration) {}
