package main

import (
	"strings"
	"testing"
)

func TestFlagToEnvVar(t *testing.T) {
	tests := []struct {
		flag     string
		expected string
	}{
		{"telegram-bot-token", "QUEUEVOTE_TELEGRAM_BOT_TOKEN"},
		{"log-level", "QUEUEVOTE_LOG_LEVEL"},
		{"spotify-short-hosts", "QUEUEVOTE_SPOTIFY_SHORT_HOSTS"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			if got := flagToEnvVar(tt.flag); got != tt.expected {
				t.Errorf("flagToEnvVar(%q) = %q, want %q", tt.flag, got, tt.expected)
			}
		})
	}
}

func TestEnvExampleCoversAllSectionFlags(t *testing.T) {
	content := generateEnvExampleContent(rootCmd)

	for _, section := range envSections {
		for _, name := range section.flags {
			if rootCmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("section %q lists unknown flag %q", section.title, name)
				continue
			}
			if !strings.Contains(content, flagToEnvVar(name)+"=") {
				t.Errorf("env example is missing %s", flagToEnvVar(name))
			}
		}
	}

	if !strings.Contains(content, "QUEUEVOTE_SPOTIFY_TOKEN_PATH=./spotify_token.json") {
		t.Error("env example should carry the token path default")
	}
}

func TestBuildConfigDefaultsAreValidApartFromSecrets(t *testing.T) {
	cfg := buildConfig()

	if cfg.Spotify.RedirectURL != "http://localhost:8888/callback" {
		t.Errorf("unexpected default redirect URL %q", cfg.Spotify.RedirectURL)
	}
	if len(cfg.Spotify.ShortHosts) != 2 {
		t.Errorf("expected two default short hosts, got %v", cfg.Spotify.ShortHosts)
	}

	cfg.Telegram.BotToken = "token"
	cfg.Telegram.VotingChatID = -100123
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestBuildLoggerWithFile(t *testing.T) {
	logFile := t.TempDir() + "/queuevote.log"

	log := buildLogger("debug", logFile)
	log.Info("hello")
	_ = log.Sync()

	if !log.Core().Enabled(-1) {
		t.Error("debug level should be enabled")
	}
}
