package core

import (
	"strings"

	"queuevote/pkg/musiclink"
)

const (
	acceptPrefix   = "accept:"
	declinePayload = "decline"
)

// AcceptPayload encodes the Accept button payload for a track.
func AcceptPayload(ref musiclink.TrackRef) string {
	return acceptPrefix + ref.URN()
}

// DeclinePayload is the payload of the Decline button. It carries no track.
func DeclinePayload() string {
	return declinePayload
}

// ParseCallbackAction decodes a button payload. An accept payload whose URN
// does not parse exactly yields ActionAccept without a track.
func ParseCallbackAction(data string) CallbackAction {
	action := CallbackAction{Raw: data}

	switch {
	case data == declinePayload:
		action.Kind = ActionDecline
	case strings.HasPrefix(data, acceptPrefix):
		action.Kind = ActionAccept
		urn := strings.TrimPrefix(data, acceptPrefix)
		if ref, ok := musiclink.ParseTrackURN(urn); ok && ref.URN() == urn {
			action.Track = &ref
		}
	default:
		action.Kind = ActionUnrecognized
	}

	return action
}
