package core

import (
	"queuevote/internal/chat"
	"queuevote/pkg/musiclink"
)

const (
	commandHelp  = "help"
	commandID    = "id"
	commandLogin = "spotifylogin"
)

// route is the handler an event is dispatched to.
type route int

const (
	routeIgnore route = iota
	routeCallback
	routeLogin
	routeLoginComplete
	routeHelp
	routeID
	routeTrackRequest
	routeUnsupported
	routeUsage
)

func (r route) String() string {
	switch r {
	case routeCallback:
		return "callback"
	case routeLogin:
		return "login"
	case routeLoginComplete:
		return "login_complete"
	case routeHelp:
		return "help"
	case routeID:
		return "id"
	case routeTrackRequest:
		return "track_request"
	case routeUnsupported:
		return "unsupported"
	case routeUsage:
		return "usage"
	default:
		return "ignore"
	}
}

// VotingCard is the message posted to the voting scope for one request.
type VotingCard struct {
	Requester string
	Track     musiclink.TrackRef
	Text      string // HTML
	Buttons   [][]chat.Button
}
