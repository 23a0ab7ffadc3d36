package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"queuevote/internal/core"
)

type fakeAuthenticator struct {
	refreshes   atomic.Int32
	exchangeErr error
}

func (a *fakeAuthenticator) AuthURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.spotify.com/authorize?state=" + url.QueryEscape(state)
}

func (a *fakeAuthenticator) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if a.exchangeErr != nil {
		return nil, a.exchangeErr
	}
	return &oauth2.Token{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

func (a *fakeAuthenticator) RefreshToken(_ context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	a.refreshes.Add(1)
	time.Sleep(10 * time.Millisecond)
	return &oauth2.Token{
		AccessToken: "refreshed-" + token.AccessToken,
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func newTestTokenStore(t *testing.T) (*TokenStore, *fakeAuthenticator, string) {
	t.Helper()
	auth := &fakeAuthenticator{}
	path := filepath.Join(t.TempDir(), "token.json")
	return NewTokenStore(auth, path, zap.NewNop()), auth, path
}

const testUser = int64(7)

// beginLogin starts a login of userID and returns a redirect URL carrying its state.
func beginLogin(t *testing.T, store *TokenStore, userID int64, code string) string {
	t.Helper()

	authURL, err := store.BeginLogin(userID)
	if err != nil {
		t.Fatalf("BeginLogin() = %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("invalid auth URL %q: %v", authURL, err)
	}

	return "http://localhost:8888/callback?code=" + code + "&state=" + u.Query().Get("state")
}

func writeTokenFile(t *testing.T, path string, token *oauth2.Token) {
	t.Helper()
	data, err := json.Marshal(TokenData{Token: token})
	if err != nil {
		t.Fatalf("Failed to marshal token: %v", err)
	}
	if err := os.WriteFile(path, data, FilePermission); err != nil {
		t.Fatalf("Failed to write token: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store, _, _ := newTestTokenStore(t)

		store.Load()
		if store.HasToken() {
			t.Error("HasToken() = true without cache")
		}
		if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
			t.Errorf("Token() error = %v, want ErrNoToken", err)
		}
	})

	t.Run("cached token", func(t *testing.T) {
		store, _, path := newTestTokenStore(t)
		writeTokenFile(t, path, &oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)})

		store.Load()
		token, err := store.Token()
		if err != nil || token.AccessToken != "cached" {
			t.Errorf("Token() = %v, %v", token, err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		store, _, path := newTestTokenStore(t)
		if err := os.WriteFile(path, []byte("{not json"), FilePermission); err != nil {
			t.Fatal(err)
		}

		store.Load()

		if store.HasToken() {
			t.Error("HasToken() = true for corrupt cache")
		}
		if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
			t.Errorf("Token() error = %v, want ErrNoToken", err)
		}
	})

	t.Run("unreadable path", func(t *testing.T) {
		store, _, path := newTestTokenStore(t)
		if err := os.Mkdir(path, 0o700); err != nil {
			t.Fatal(err)
		}

		store.Load()

		if store.HasToken() {
			t.Error("HasToken() = true for unreadable cache")
		}
	})
}

func TestParseResponseCode(t *testing.T) {
	store, _, _ := newTestTokenStore(t)

	if _, ok := store.ParseResponseCode(testUser, "http://localhost:8888/callback?code=abc&state=x"); ok {
		t.Error("accepted a code before any login was started")
	}

	tests := []struct {
		name string
		text func(redirect string) string
		ok   bool
	}{
		{"pasted redirect", func(r string) string { return r }, true},
		{"surrounding whitespace", func(r string) string { return "  " + r + "\n" }, true},
		{"wrong state", func(string) string { return "http://localhost:8888/callback?code=abc&state=other" }, false},
		{"missing code", func(string) string { return "http://localhost:8888/callback?state=x" }, false},
		{"plain text", func(string) string { return "abc" }, false},
		{"relative url", func(string) string { return "/callback?code=abc" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect := beginLogin(t, store, testUser, "abc")

			code, ok := store.ParseResponseCode(testUser, tt.text(redirect))
			if ok != tt.ok {
				t.Fatalf("ParseResponseCode() ok = %v, want %v", ok, tt.ok)
			}
			if ok && code != "abc" {
				t.Errorf("code = %q, want abc", code)
			}

			// every attempt uses up the login
			if _, ok := store.ParseResponseCode(testUser, redirect); ok {
				t.Error("redirect accepted after the login was used")
			}
		})
	}
}

func TestLoginsOfDifferentUsersAreIndependent(t *testing.T) {
	store, _, _ := newTestTokenStore(t)

	first := beginLogin(t, store, 1, "first")
	second := beginLogin(t, store, 2, "second")

	if _, ok := store.ParseResponseCode(2, first); ok {
		t.Error("user 2 completed with the redirect of user 1")
	}

	// the failed attempt used up user 2's login only
	if code, ok := store.ParseResponseCode(1, first); !ok || code != "first" {
		t.Errorf("user 1 login = %q, %v; want first, true", code, ok)
	}
	if _, ok := store.ParseResponseCode(2, second); ok {
		t.Error("user 2 login should have been used up")
	}

	again := beginLogin(t, store, 2, "again")
	if code, ok := store.ParseResponseCode(2, again); !ok || code != "again" {
		t.Errorf("user 2 login = %q, %v; want again, true", code, ok)
	}
}

func TestExchangePersistsToken(t *testing.T) {
	store, _, path := newTestTokenStore(t)
	redirect := beginLogin(t, store, testUser, "good")

	code, ok := store.ParseResponseCode(testUser, redirect)
	if !ok {
		t.Fatal("ParseResponseCode() rejected the redirect")
	}
	if err := store.Exchange(context.Background(), code); err != nil {
		t.Fatalf("Exchange() = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if info.Mode().Perm() != FilePermission {
		t.Errorf("token file mode = %v, want %v", info.Mode().Perm(), os.FileMode(FilePermission))
	}

	reloaded := NewTokenStore(&fakeAuthenticator{}, path, zap.NewNop())
	reloaded.Load()
	token, err := reloaded.Token()
	if err != nil || token.AccessToken != "access-good" {
		t.Errorf("reloaded Token() = %v, %v", token, err)
	}

	// The state is single use.
	if _, ok := store.ParseResponseCode(testUser, redirect); ok {
		t.Error("redirect accepted twice")
	}
}

func TestExchangeFailureKeepsNoToken(t *testing.T) {
	store, auth, path := newTestTokenStore(t)
	auth.exchangeErr = errors.New("invalid_grant")

	err := store.Exchange(context.Background(), "bad")
	if !errors.Is(err, core.ErrUpstreamAPI) {
		t.Errorf("Exchange() error = %v, want ErrUpstreamAPI", err)
	}
	if store.HasToken() {
		t.Error("failed exchange adopted a token")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed exchange wrote a token file: %v", err)
	}
}

func TestTokenRefreshesOnce(t *testing.T) {
	store, auth, path := newTestTokenStore(t)
	writeTokenFile(t, path, &oauth2.Token{
		AccessToken:  "old",
		RefreshToken: "keep-me",
		Expiry:       time.Now().Add(-time.Minute),
	})
	store.Load()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := store.Token()
			if err != nil {
				t.Errorf("Token() = %v", err)
				return
			}
			if token.AccessToken != "refreshed-old" {
				t.Errorf("AccessToken = %q", token.AccessToken)
			}
		}()
	}
	wg.Wait()

	if got := auth.refreshes.Load(); got != 1 {
		t.Errorf("refreshed %d times, want 1", got)
	}

	token, _ := store.Token()
	if token.RefreshToken != "keep-me" {
		t.Errorf("RefreshToken = %q, want the previous refresh token", token.RefreshToken)
	}
}

func TestExpiredTokenWithoutRefreshToken(t *testing.T) {
	store, _, path := newTestTokenStore(t)
	writeTokenFile(t, path, &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Minute)})
	store.Load()

	if _, err := store.Token(); !errors.Is(err, core.ErrUpstreamAPI) {
		t.Errorf("Token() error = %v, want ErrUpstreamAPI", err)
	}
}
