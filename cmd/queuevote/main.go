// Package main provides the QueueVote CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"queuevote/internal/chat/telegram"
	"queuevote/internal/core"
	"queuevote/internal/dialogue"
	"queuevote/internal/flood"
	httpserver "queuevote/internal/http"
	"queuevote/internal/i18n"
	"queuevote/internal/spotify"
	"queuevote/internal/store"
	"queuevote/pkg/musiclink"
)

const (
	envPrefix              = "QUEUEVOTE"
	claimFalsePositiveRate = 0.001
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "queuevote",
	Short: "QueueVote - Telegram → Spotify queue voting",
	Long: `QueueVote lets people request Spotify tracks in a private chat with a Telegram bot.
Every request is posted to a voting chat where it can be accepted into the Spotify
playback queue or declined.`,
	RunE:         runQueueVote,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-file", "", "additionally write JSON logs to this rotating file")
	flags.Bool("telegram-enabled", defaults.Telegram.Enabled, "Enable Telegram integration")
	flags.String("telegram-bot-token", "", "Telegram bot token")
	flags.Int64("telegram-voting-chat-id", 0, "Telegram chat ID where requests are voted on")
	flags.Int("telegram-voting-thread-id", 0, "Telegram topic ID inside the voting chat (0 for none)")
	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("spotify-redirect-url", defaults.Spotify.RedirectURL, "Spotify OAuth redirect URL")
	flags.String("spotify-token-path", defaults.Spotify.TokenPath, "Spotify token cache file")
	flags.String("spotify-market", defaults.Spotify.Market, "Spotify market for track lookups")
	flags.StringSlice("spotify-short-hosts", defaults.Spotify.ShortHosts, "Hosts of Spotify short links")
	flags.String("server-host", defaults.Server.Host, "HTTP server host")
	flags.Int("server-port", defaults.Server.Port, "HTTP server port")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", defaults.App.Language, fmt.Sprintf("Bot language (%s)", supportedLangs))
	flags.Int("flood-limit-per-minute", defaults.App.FloodLimitPerMinute, "Maximum track requests per user per minute")
	flags.Int("max-concurrent-events", defaults.App.MaxConcurrentEvents, "Maximum number of events handled at once")
	flags.Duration("event-timeout", defaults.App.EventTimeout, "Time limit for handling one event")
	flags.Duration("http-timeout", defaults.App.HTTPTimeout, "Timeout of outbound HTTP requests")
	flags.Int("max-vote-claims", defaults.App.MaxVoteClaims, "Number of decided voting cards remembered")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.File)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Telegram.Enabled = viper.GetBool("telegram-enabled")
	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")
	cfg.Telegram.VotingChatID = viper.GetInt64("telegram-voting-chat-id")
	cfg.Telegram.VotingThreadID = viper.GetInt("telegram-voting-thread-id")

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.RedirectURL = viper.GetString("spotify-redirect-url")
	cfg.Spotify.TokenPath = viper.GetString("spotify-token-path")
	cfg.Spotify.Market = viper.GetString("spotify-market")
	cfg.Spotify.ShortHosts = viper.GetStringSlice("spotify-short-hosts")

	cfg.Server.Host = viper.GetString("server-host")
	cfg.Server.Port = viper.GetInt("server-port")

	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.File = viper.GetString("log-file")

	cfg.App.Language = viper.GetString("language")
	cfg.App.FloodLimitPerMinute = viper.GetInt("flood-limit-per-minute")
	cfg.App.MaxConcurrentEvents = viper.GetInt("max-concurrent-events")
	cfg.App.EventTimeout = viper.GetDuration("event-timeout")
	cfg.App.HTTPTimeout = viper.GetDuration("http-timeout")
	cfg.App.MaxVoteClaims = viper.GetInt("max-vote-claims")

	return cfg
}

func buildLogger(level, file string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	var opts []zap.Option
	if file != "" {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(cfg.EncoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   file,
				MaxSize:    100, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}),
			cfg.Level,
		)
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	builtLogger, err := cfg.Build(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runQueueVote(cmd *cobra.Command, _ []string) error {
	defer func() {
		_ = logger.Sync()
	}()

	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting QueueVote",
		zap.Int64("voting_chat_id", config.Telegram.VotingChatID),
		zap.Int("voting_thread_id", config.Telegram.VotingThreadID),
		zap.String("language", config.App.Language))

	svcs, err := initializeServices()
	if err != nil {
		return err
	}
	defer svcs.flood.Stop()

	return runServices(ctx, svcs)
}

type services struct {
	tokens     *spotify.TokenStore
	httpServer *httpserver.Server
	dispatcher *core.Dispatcher
	flood      *flood.Floodgate
}

func initializeServices() (*services, error) {
	tokens := spotify.NewTokenStore(spotify.NewAuthenticator(&config.Spotify),
		config.Spotify.TokenPath, logger.Named("token"))
	tokens.Load()

	claims, err := store.NewClaimStore(config.App.MaxVoteClaims, claimFalsePositiveRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create vote guard: %w", err)
	}

	catalog := spotify.NewClient(&config.Spotify, tokens, logger.Named("spotify"),
		spotify.WithHTTPTimeout(config.App.HTTPTimeout))

	resolver := core.NewMusicLinkResolver(musiclink.NewResolver(
		musiclink.WithShortHosts(config.Spotify.ShortHosts...),
		musiclink.WithTimeout(config.App.HTTPTimeout),
	))

	frontend := telegram.NewFrontend(&telegram.Config{
		BotToken:     config.Telegram.BotToken,
		Enabled:      config.Telegram.Enabled,
		VotingChatID: config.Telegram.VotingChatID,
	}, logger.Named("telegram"))

	floodgate := flood.New(config.App.FloodLimitPerMinute)
	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"), tokens.HasToken)

	dispatcher := core.NewDispatcher(config, frontend, catalog, tokens, resolver,
		dialogue.NewStore(), claims, logger.Named("dispatcher"),
		core.WithFloodGate(floodgate),
		core.WithMetrics(httpServer))

	return &services{
		tokens:     tokens,
		httpServer: httpServer,
		dispatcher: dispatcher,
		flood:      floodgate,
	}, nil
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	logger.Info("QueueVote started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.Bool("spotify_logged_in", svcs.tokens.HasToken()))

	runErr := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), config.App.EventTimeout)
	defer cancel()
	if err := svcs.dispatcher.Stop(stopCtx); err != nil {
		logger.Warn("Failed to drain in-flight events", zap.Error(err))
	}

	if runErr != nil {
		logger.Error("QueueVote stopped with error", zap.Error(runErr))
		return runErr
	}

	logger.Info("QueueVote stopped gracefully")
	return nil
}
