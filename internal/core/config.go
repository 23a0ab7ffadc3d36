package core

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"queuevote/internal/i18n"
)

const (
	// DefaultServerPort is the default HTTP server port
	DefaultServerPort = 8888
	// DefaultFloodLimitPerMinute is the default number of track requests per user per minute
	DefaultFloodLimitPerMinute = 6
	// DefaultMaxConcurrentEvents bounds the number of events handled at once
	DefaultMaxConcurrentEvents = 64
	// DefaultEventTimeout bounds the handling of a single event
	DefaultEventTimeout = 30 * time.Second
	// DefaultHTTPTimeout bounds outbound HTTP requests
	DefaultHTTPTimeout = 10 * time.Second
	// DefaultMaxVoteClaims is the number of recent voting cards remembered as decided
	DefaultMaxVoteClaims = 10000
	// DefaultMarket is the catalog market used for track lookups
	DefaultMarket = "DE"
)

// Config is the complete service configuration.
type Config struct {
	Telegram TelegramConfig
	Spotify  SpotifyConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

// TelegramConfig selects the bot and its voting scope.
type TelegramConfig struct {
	BotToken       string
	Enabled        bool
	VotingChatID   int64
	VotingThreadID int // 0 when the voting chat has no topics
}

// SpotifyConfig configures the Spotify OAuth client and API access.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenPath    string
	Market       string
	ShortHosts   []string
}

// ServerConfig configures the ops HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
	File  string // optional rotating log file
}

// AppConfig holds dispatcher tuning.
type AppConfig struct {
	Language            string
	FloodLimitPerMinute int
	MaxConcurrentEvents int
	EventTimeout        time.Duration
	HTTPTimeout         time.Duration
	MaxVoteClaims       int
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Enabled: true,
		},
		Spotify: SpotifyConfig{
			RedirectURL: "http://localhost:8888/callback",
			TokenPath:   "./spotify_token.json",
			Market:      DefaultMarket,
			ShortHosts:  []string{"spotify.link", "spotify.app.link"},
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			Language:            i18n.DefaultLanguage,
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
			MaxConcurrentEvents: DefaultMaxConcurrentEvents,
			EventTimeout:        DefaultEventTimeout,
			HTTPTimeout:         DefaultHTTPTimeout,
			MaxVoteClaims:       DefaultMaxVoteClaims,
		},
	}
}

// Validate checks the configuration. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		errs = append(errs, errors.New("telegram bot token is required"))
	}
	if c.Telegram.VotingChatID == 0 {
		errs = append(errs, errors.New("telegram voting chat id is required"))
	}
	if c.Telegram.VotingThreadID < 0 {
		errs = append(errs, fmt.Errorf("telegram voting thread id must not be negative, got %d", c.Telegram.VotingThreadID))
	}

	if c.Spotify.ClientID == "" {
		errs = append(errs, errors.New("spotify client id is required"))
	}
	if c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("spotify client secret is required"))
	}
	if u, err := url.Parse(c.Spotify.RedirectURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("spotify redirect url %q is not an absolute url", c.Spotify.RedirectURL))
	}
	if c.Spotify.TokenPath == "" {
		errs = append(errs, errors.New("spotify token path is required"))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d is out of range", c.Server.Port))
	}

	if !i18n.IsSupported(c.App.Language) {
		errs = append(errs, fmt.Errorf("unsupported language %q, expected one of %v",
			c.App.Language, i18n.GetSupportedLanguages()))
	}
	if c.App.MaxConcurrentEvents <= 0 {
		errs = append(errs, errors.New("max concurrent events must be positive"))
	}
	if c.App.EventTimeout <= 0 {
		errs = append(errs, errors.New("event timeout must be positive"))
	}
	if c.App.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if c.App.MaxVoteClaims <= 0 {
		errs = append(errs, errors.New("max vote claims must be positive"))
	}

	return errors.Join(errs...)
}
