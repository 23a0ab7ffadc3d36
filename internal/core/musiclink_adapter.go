package core

import (
	"context"
	"fmt"

	"queuevote/pkg/musiclink"
)

// musicLinkAdapter maps musiclink errors onto the core error kinds.
type musicLinkAdapter struct {
	resolver *musiclink.Resolver
}

// NewMusicLinkResolver wraps resolver as a LinkResolver. Every resolution
// failure, including musiclink.ErrTooManyRedirects, is reported as ErrInvalidLink.
func NewMusicLinkResolver(resolver *musiclink.Resolver) LinkResolver {
	return &musicLinkAdapter{resolver: resolver}
}

// Resolve resolves text to a track reference.
func (a *musicLinkAdapter) Resolve(ctx context.Context, text string) (musiclink.TrackRef, error) {
	ref, err := a.resolver.Resolve(ctx, text)
	if err != nil {
		return musiclink.TrackRef{}, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}

	return ref, nil
}

// CanResolve reports whether text carries a link the resolver understands.
func (a *musicLinkAdapter) CanResolve(text string) bool {
	return a.resolver.CanResolve(text)
}
