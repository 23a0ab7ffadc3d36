// Package spotify provides the Spotify Web API catalog client and OAuth token handling.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"queuevote/internal/core"
	"queuevote/pkg/musiclink"
)

// Client looks up tracks and queues them on the account of the stored token.
type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger
	client *spotify.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL string
	timeout time.Duration
}

// WithAPIBaseURL points the client at a different Web API root.
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithHTTPTimeout sets the timeout of each API request.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// NewClient creates a client authenticating every request with a token from tokens.
func NewClient(config *core.SpotifyConfig, tokens oauth2.TokenSource, logger *zap.Logger, opts ...ClientOption) *Client {
	o := clientOptions{timeout: core.DefaultHTTPTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := &http.Client{
		Timeout: o.timeout,
		Transport: &oauth2.Transport{
			Source: tokens,
			Base:   http.DefaultTransport,
		},
	}

	var spotifyOpts []spotify.ClientOption
	if o.baseURL != "" {
		spotifyOpts = append(spotifyOpts, spotify.WithBaseURL(o.baseURL))
	}

	return &Client{
		config: config,
		logger: logger,
		client: spotify.New(httpClient, spotifyOpts...),
	}
}

// Track fetches the metadata of a track.
func (c *Client) Track(ctx context.Context, trackID string) (*core.TrackMetadata, error) {
	var opts []spotify.RequestOption
	if c.config.Market != "" {
		opts = append(opts, spotify.Market(c.config.Market))
	}

	track, err := c.client.GetTrack(ctx, spotify.ID(trackID), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get track %s: %w", core.ErrUpstreamAPI, trackID, err)
	}

	return convertSpotifyTrack(track), nil
}

// QueueTrack appends a track to the playback queue of the active device.
func (c *Client) QueueTrack(ctx context.Context, trackID string) error {
	if err := c.client.QueueSong(ctx, spotify.ID(trackID)); err != nil {
		return fmt.Errorf("%w: failed to add track to queue: %w", core.ErrUpstreamAPI, err)
	}

	c.logger.Info("Track added to queue", zap.String("trackID", trackID))
	return nil
}

func convertSpotifyTrack(track *spotify.FullTrack) *core.TrackMetadata {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	covers := make([]string, 0, len(track.Album.Images))
	for _, image := range track.Album.Images {
		covers = append(covers, image.URL)
	}

	listenURL := track.ExternalURLs["spotify"]
	if listenURL == "" && track.ID != "" {
		listenURL = musiclink.TrackRef{ID: string(track.ID)}.URL()
	}

	return &core.TrackMetadata{
		ID:         string(track.ID),
		Name:       track.Name,
		Artists:    artists,
		Album:      track.Album.Name,
		Popularity: int(track.Popularity),
		Duration:   time.Duration(track.Duration) * time.Millisecond,
		URL:        listenURL,
		CoverURLs:  covers,
	}
}
