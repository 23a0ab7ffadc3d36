package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"queuevote/internal/core"
)

const (
	// FilePermission is the permission for token files
	FilePermission = 0o600
	// refreshTimeout bounds a single token refresh
	refreshTimeout = 10 * time.Second
)

// ErrNoToken is returned when no token has been obtained yet.
var ErrNoToken = errors.New("no spotify token, log in with /spotifylogin")

// Authenticator is the OAuth part of the Spotify accounts service.
type Authenticator interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// TokenData is the on-disk token cache format
type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

// NewAuthenticator creates the Spotify authenticator with the scopes needed to queue tracks.
func NewAuthenticator(config *core.SpotifyConfig) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadPlaybackState,
		),
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)
}

// TokenStore owns the OAuth token. Reads, refreshes and writes of the token
// and its cache file happen under one mutex.
type TokenStore struct {
	auth   Authenticator
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	token   *oauth2.Token
	pending map[int64]string // user id -> oauth state of their login
}

// NewTokenStore creates a token store persisting to path.
func NewTokenStore(auth Authenticator, path string, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		auth:    auth,
		path:    path,
		logger:  logger,
		pending: make(map[int64]string),
	}
}

// Load adopts the cached token, if any. A missing or unusable cache file
// leaves the store without a token; /spotifylogin replaces it.
func (s *TokenStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("No Spotify token in cache", zap.String("path", s.path))
		return
	}
	if err != nil {
		s.logger.Warn("Failed to read token cache, starting without token",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		s.logger.Warn("Failed to decode token cache, starting without token",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	if tokenData.Token == nil || tokenData.Token.AccessToken == "" {
		s.logger.Info("No Spotify token in cache", zap.String("path", s.path))
		return
	}

	s.token = tokenData.Token
	s.logger.Info("Loaded Spotify token from cache", zap.Time("expires_at", s.token.Expiry))
}

// HasToken reports whether a token is present.
func (s *TokenStore) HasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil
}

// BeginLogin starts a login for userID and returns the authorization URL.
// Each call replaces the state expected in that user's redirect; logins of
// other users are unaffected.
func (s *TokenStore) BeginLogin(userID int64) (string, error) {
	state, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}

	s.mu.Lock()
	s.pending[userID] = state.String()
	s.mu.Unlock()

	return s.auth.AuthURL(state.String()), nil
}

// ParseResponseCode extracts the code from a redirect URL pasted by userID.
// The URL must carry the state of that user's pending login, which is used up
// by the attempt.
func (s *TokenStore) ParseResponseCode(userID int64, text string) (string, bool) {
	s.mu.Lock()
	state, ok := s.pending[userID]
	delete(s.pending, userID)
	s.mu.Unlock()

	if !ok {
		return "", false
	}

	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	query := u.Query()
	code := query.Get("code")
	if code == "" || query.Get("state") != state {
		return "", false
	}

	return code, true
}

// Exchange trades code for a token, adopts it and writes the cache file.
func (s *TokenStore) Exchange(ctx context.Context, code string) error {
	token, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: failed to exchange code for token: %w", core.ErrUpstreamAPI, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token

	if err := s.save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	s.logger.Info("Spotify token saved", zap.Time("expires_at", token.Expiry))
	return nil
}

// Token returns a valid token, refreshing and persisting it first when it has expired.
func (s *TokenStore) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return nil, ErrNoToken
	}

	if s.token.Valid() {
		return s.token, nil
	}

	if s.token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token expired and cannot be refreshed", core.ErrUpstreamAPI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	refreshed, err := s.auth.RefreshToken(ctx, s.token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to refresh token: %w", core.ErrUpstreamAPI, err)
	}

	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = s.token.RefreshToken
	}
	s.token = refreshed

	if err := s.save(refreshed); err != nil {
		s.logger.Warn("Failed to save refreshed token", zap.Error(err))
	}

	s.logger.Debug("Spotify token refreshed", zap.Time("expires_at", refreshed.Expiry))
	return refreshed, nil
}

// save writes token to the cache file. Callers hold s.mu.
func (s *TokenStore) save(token *oauth2.Token) error {
	data, err := json.MarshalIndent(TokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*.json")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := tmp.Chmod(FilePermission); err != nil {
		_ = tmp.Close()
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}
