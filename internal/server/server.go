package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/n0madic/go-oaiadapter/internal/auth"
	"github.com/n0madic/go-oaiadapter/internal/config"
	"github.com/n0madic/go-oaiadapter/internal/limits"
	"github.com/n0madic/go-oaiadapter/internal/models"
	"github.com/n0madic/go-oaiadapter/internal/payload"
	"github.com/n0madic/go-oaiadapter/internal/pipeline"
	"github.com/n0madic/go-oaiadapter/internal/types"
	"github.com/n0madic/go-oaiadapter/internal/upstream"
)

// maxBodyBytes limits the size of incoming request bodies.
const maxBodyBytes = 10 * 1024 * 1024 // 10 MB

// defaultProvider is the provider family for model ids that match no known
// family.
const defaultProvider = "openai"

// ModelSource lists the models served on /v1/models.
type ModelSource interface {
	GetModels(ctx context.Context) []types.ModelCard
}

// Server is the main HTTP server.
type Server struct {
	Config     *config.Config
	httpServer *http.Server
	Pipeline   *pipeline.Pipeline
	Registry   ModelSource
	Limits     *limits.Tracker
	cancelBg   context.CancelFunc
}

// New creates a new server with all routes registered and its upstream
// client wired to the configured credentials.
func New(cfg *config.Config) (*Server, error) {
	tracker := limits.NewTracker()
	uc, err := NewUpstreamClient(cfg, tracker)
	if err != nil {
		return nil, err
	}
	reg := models.NewRegistry(uc, defaultProvider)
	p := &pipeline.Pipeline{
		Options:  payload.NewOptions(cfg.Adapter),
		Upstream: uc,
		Verbose:  cfg.Server.Verbose,
	}

	s := newServer(cfg, p, reg)
	s.Limits = tracker

	// Pre-fetch available models in background
	bgCtx, cancel := context.WithCancel(context.Background())
	s.cancelBg = cancel
	go func() {
		reg.GetModels(bgCtx)
		if bgCtx.Err() != nil {
			slog.Debug("models.prefetch.cancelled")
		}
	}()

	return s, nil
}

// NewUpstreamClient builds the authenticated OpenAI client for cfg. tracker
// may be nil.
func NewUpstreamClient(cfg *config.Config, tracker *limits.Tracker) (*upstream.Client, error) {
	ts, err := auth.NewTokenSource(context.Background(), cfg.Upstream)
	if err != nil {
		return nil, err
	}
	return upstream.NewClient(upstream.Options{
		Upstream:            cfg.Upstream,
		HTTPClient:          auth.NewHTTPClient(ts, &http.Client{Timeout: cfg.Upstream.Timeout}),
		Limits:              tracker,
		Verbose:             cfg.Server.Verbose,
		Debug:               cfg.Server.Debug,
		DebugChatCompletion: cfg.Adapter.DebugChatCompletion,
		DebugResponses:      cfg.Adapter.DebugResponses,
	}), nil
}

func newServer(cfg *config.Config, p *pipeline.Pipeline, reg ModelSource) *Server {
	s := &Server{Config: cfg, Pipeline: p, Registry: reg}

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)

	// OpenAI-compatible routes
	mux.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("POST /v1/responses", s.handleResponses)
	mux.HandleFunc("GET /v1/models", s.handleListModels)
	mux.HandleFunc("GET /v1/limits", s.handleLimits)

	// Dry run of payload shaping
	mux.HandleFunc("POST /v1/payload/preview", s.handlePreview)

	sc := &cfg.Server
	handler := corsMiddleware(authMiddleware(sc, requestIDMiddleware(verboseMiddleware(sc, debugMiddleware(sc, mux)))))

	addr := fmt.Sprintf("%s:%d", sc.Host, sc.Port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// Streams may run as long as the upstream timeout allows.
		WriteTimeout: cfg.Upstream.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelBg != nil {
		s.cancelBg()
	}
	return s.httpServer.Shutdown(ctx)
}
