package core

import "errors"

var (
	// ErrInvalidLink is returned when text does not resolve to any track.
	ErrInvalidLink = errors.New("invalid track link")
	// ErrInvalidCatalogURI is returned when a callback payload does not carry a valid track id.
	ErrInvalidCatalogURI = errors.New("invalid catalog uri")
	// ErrUpstreamAPI wraps failures of the catalog service, including auth failures.
	ErrUpstreamAPI = errors.New("upstream api error")
	// ErrPermissionDenied marks events outside the scope permitted for an action.
	ErrPermissionDenied = errors.New("permission denied")
)
