// Package http provides the ops HTTP server: health, readiness, metrics and
// the OAuth redirect landing page.
package http

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"queuevote/internal/core"
)

const (
	serviceName     = "queuevote"
	shutdownTimeout = 10 * time.Second
)

// ReadinessFunc reports whether the service can serve requests.
type ReadinessFunc func() bool

type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	registry *prometheus.Registry
	metrics  *Metrics
}

type Metrics struct {
	EventsTotal        *prometheus.CounterVec
	TrackRequestsTotal *prometheus.CounterVec
	VotesTotal         *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	ProcessingTime     *prometheus.HistogramVec
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuevote_events_total",
				Help: "Total number of chat events received",
			},
			[]string{"kind", "route"},
		),
		TrackRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuevote_track_requests_total",
				Help: "Total number of track requests by outcome",
			},
			[]string{"status"},
		),
		VotesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuevote_votes_total",
				Help: "Total number of votes on voting cards",
			},
			[]string{"decision", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuevote_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		ProcessingTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "queuevote_processing_duration_seconds",
				Help:    "Time spent handling events",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// NewServer creates the server. Metrics live on a private registry.
// ready may be nil, in which case the service is always ready.
func NewServer(config *core.ServerConfig, logger *zap.Logger, ready ReadinessFunc) *Server {
	metrics := newMetrics()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.EventsTotal,
		metrics.TrackRequestsTotal,
		metrics.VotesTotal,
		metrics.ErrorsTotal,
		metrics.ProcessingTime,
	)

	mux := setupRoutes(logger, registry, ready)

	return &Server{
		config:   config,
		logger:   logger,
		server:   createHTTPServer(config, mux),
		registry: registry,
		metrics:  metrics,
	}
}

func createHTTPServer(config *core.ServerConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func setupRoutes(logger *zap.Logger, registry *prometheus.Registry, ready ReadinessFunc) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, http.StatusOK, `{"status":"ok","service":"`+serviceName+`"}`)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			writeJSON(w, logger, http.StatusServiceUnavailable,
				`{"status":"not ready","service":"`+serviceName+`","reason":"spotify login required"}`)
			return
		}
		writeJSON(w, logger, http.StatusOK, `{"status":"ready","service":"`+serviceName+`"}`)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, logger, callbackPage(r))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeHTML(w, logger, indexPage)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Debug("Failed to write response", zap.Error(err))
	}
}

func writeHTML(w http.ResponseWriter, logger *zap.Logger, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Debug("Failed to write response", zap.Error(err))
	}
}

// callbackPage shows the redirect URL so it can be pasted into the login dialogue.
func callbackPage(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	redirected := fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI())

	return `<!DOCTYPE html>
<html>
<head>
    <title>QueueVote Spotify Login</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        code { word-break: break-all; background: #f4f4f4; padding: 4px; }
    </style>
</head>
<body>
    <h1>🎵 Spotify Login</h1>
    <p>Copy this URL and send it to the bot in the voting chat:</p>
    <p><code>` + html.EscapeString(redirected) + `</code></p>
</body>
</html>`
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
    <title>QueueVote</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 QueueVote</h1>
    <p>Telegram → Spotify queue voting service</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) RecordEvent(kind, route string) {
	s.metrics.EventsTotal.WithLabelValues(kind, route).Inc()
}

func (s *Server) RecordTrackRequest(status string) {
	s.metrics.TrackRequestsTotal.WithLabelValues(status).Inc()
}

func (s *Server) RecordVote(decision, status string) {
	s.metrics.VotesTotal.WithLabelValues(decision, status).Inc()
}

func (s *Server) RecordError(component, errorType string) {
	s.metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func (s *Server) RecordProcessingTime(route string, duration time.Duration) {
	s.metrics.ProcessingTime.WithLabelValues(route).Observe(duration.Seconds())
}

var _ core.Metrics = (*Server)(nil)
