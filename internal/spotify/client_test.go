package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"queuevote/internal/core"
)

const trackJSON = `{
  "id": "abc123",
  "name": "Song",
  "popularity": 64,
  "duration_ms": 215000,
  "external_urls": {"spotify": "https://open.spotify.com/track/abc123"},
  "artists": [{"id": "a1", "name": "Artist One"}, {"id": "a2", "name": "Artist Two"}],
  "album": {
    "id": "al1",
    "name": "Album",
    "images": [
      {"url": "https://i.scdn.co/image/large", "height": 640, "width": 640},
      {"url": "https://i.scdn.co/image/small", "height": 64, "width": 64}
    ]
  }
}`

type fakeAPI struct {
	mu       sync.Mutex
	auth     []string
	markets  []string
	queued   []string
	failWith int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/tracks/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		f.markets = append(f.markets, r.URL.Query().Get("market"))
		f.mu.Unlock()

		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			_, _ = w.Write([]byte(`{"error": {"status": 404, "message": "non existing id"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(trackJSON))
	})

	mux.HandleFunc("POST /v1/me/player/queue", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			_, _ = w.Write([]byte(`{"error": {"status": 404, "message": "Player command failed: No active device found"}}`))
			return
		}
		f.mu.Lock()
		f.queued = append(f.queued, r.URL.Query().Get("uri"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
}

func newTestClient(t *testing.T, api *fakeAPI, market string) *Client {
	t.Helper()

	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: "test-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})

	return NewClient(&core.SpotifyConfig{Market: market}, tokens, zap.NewNop(),
		WithAPIBaseURL(server.URL+"/v1/"),
		WithHTTPTimeout(5*time.Second))
}

func TestTrack(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api, "DE")

	track, err := client.Track(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Track() = %v", err)
	}

	if track.ID != "abc123" || track.Name != "Song" || track.Album != "Album" {
		t.Errorf("unexpected track %+v", track)
	}
	if len(track.Artists) != 2 || track.Artists[1] != "Artist Two" {
		t.Errorf("Artists = %v", track.Artists)
	}
	if track.Popularity != 64 {
		t.Errorf("Popularity = %d", track.Popularity)
	}
	if track.Duration != 215*time.Second {
		t.Errorf("Duration = %v", track.Duration)
	}
	if track.URL != "https://open.spotify.com/track/abc123" {
		t.Errorf("URL = %q", track.URL)
	}
	if len(track.CoverURLs) != 2 || track.CoverURLs[0] != "https://i.scdn.co/image/large" {
		t.Errorf("CoverURLs = %v", track.CoverURLs)
	}

	if len(api.auth) != 1 || api.auth[0] != "Bearer test-token" {
		t.Errorf("Authorization headers = %v", api.auth)
	}
	if len(api.markets) != 1 || api.markets[0] != "DE" {
		t.Errorf("market = %v, want DE", api.markets)
	}
}

func TestTrackWithoutMarket(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api, "")

	if _, err := client.Track(context.Background(), "abc123"); err != nil {
		t.Fatalf("Track() = %v", err)
	}
	if api.markets[0] != "" {
		t.Errorf("market = %q, want none", api.markets[0])
	}
}

func TestQueueTrack(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api, "DE")

	if err := client.QueueTrack(context.Background(), "abc123"); err != nil {
		t.Fatalf("QueueTrack() = %v", err)
	}

	if len(api.queued) != 1 || api.queued[0] != "spotify:track:abc123" {
		t.Errorf("queued = %v", api.queued)
	}
}

func TestUpstreamErrors(t *testing.T) {
	api := &fakeAPI{failWith: http.StatusNotFound}
	client := newTestClient(t, api, "DE")

	if _, err := client.Track(context.Background(), "missing"); !errors.Is(err, core.ErrUpstreamAPI) {
		t.Errorf("Track() error = %v, want ErrUpstreamAPI", err)
	}
	if err := client.QueueTrack(context.Background(), "abc123"); !errors.Is(err, core.ErrUpstreamAPI) {
		t.Errorf("QueueTrack() error = %v, want ErrUpstreamAPI", err)
	}
}

func TestRequestsFailWithoutToken(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	store := NewTokenStore(&fakeAuthenticator{}, t.TempDir()+"/token.json", zap.NewNop())
	client := NewClient(&core.SpotifyConfig{}, store, zap.NewNop(), WithAPIBaseURL(server.URL+"/v1/"))

	err := client.QueueTrack(context.Background(), "abc123")
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("QueueTrack() error = %v, want ErrNoToken", err)
	}
	if len(api.auth) != 0 {
		t.Error("request reached the API without a token")
	}
}
