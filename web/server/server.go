package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/df07/go-satellite-raytracer/internal/config"
	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/internal/observability"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
	"github.com/df07/go-satellite-raytracer/pkg/session"
)

// Server serves the visualiser to browsers: a live websocket stream driven by
// the session clock, one-shot PNG frames and JSON state.
type Server struct {
	cfg     config.ServerConfig
	session *session.Session
	scene   *scene.Scene
	logger  logging.Logger
	metrics *observability.RenderCollector
	limiter *IPRateLimiter
	hub     *Hub
	mux     *http.ServeMux
}

// Option customises a Server
type Option func(*Server)

// WithLogger sets the base server logger
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics exposes collector on /metrics and tracks viewer counts
func WithMetrics(collector *observability.RenderCollector) Option {
	return func(s *Server) {
		s.metrics = collector
	}
}

// NewServer creates a web server for sess, whose scene is sc
func NewServer(sess *session.Session, sc *scene.Scene, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		session: sess,
		scene:   sc,
		logger:  logging.Noop(),
		limiter: NewIPRateLimiter(rate.Limit(cfg.FrameRate), cfg.FrameBurst),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hub = NewHub(s.logger, s.metrics.SetStreamClients)
	s.logger = NewConsoleLogger(s.logger, s.hub)
	sess.AddFrameListener(s.streamFrame)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/scenes", s.handleScenes)
	s.mux.HandleFunc("GET /api/frame", s.handleFrame)
	s.mux.HandleFunc("GET /api/inspect", s.handleInspect)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	if s.cfg.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

// Handler returns the HTTP handler with every route
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Hub returns the websocket viewer hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start steps the session on a clock and serves HTTP until ctx is cancelled.
// With a domain configured it serves HTTPS through autocert and answers ACME
// challenges on :80.
func (s *Server) Start(ctx context.Context) error {
	clockCtx, stopClock := context.WithCancel(ctx)
	clock := session.NewClock(time.Duration(s.cfg.FrameInterval) * time.Millisecond)
	clock.AddListener(func(now time.Time) {
		if _, _, err := s.session.Step(clockCtx, now); err != nil && clockCtx.Err() == nil {
			s.logger.Warn(ctx, "frame step failed", logging.Err(err))
		}
	})
	clockDone := clock.Start(clockCtx)
	defer func() {
		stopClock()
		<-clockDone
	}()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.cfg.Domain == "" {
			s.logger.Info(ctx, "starting web server", logging.String("addr", srv.Addr))
			errCh <- srv.ListenAndServe()
			return
		}

		manager, err := newCertManager(s.cfg.Domain, s.cfg.CertCache)
		if err != nil {
			errCh <- err
			return
		}
		srv.TLSConfig = tlsConfig(manager)
		go http.ListenAndServe(":80", manager.HTTPHandler(nil))

		s.logger.Info(ctx, "starting web server",
			logging.String("addr", srv.Addr),
			logging.String("domain", s.cfg.Domain),
		)
		errCh <- srv.ListenAndServeTLS("", "")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleState returns the camera, orbit and surface state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s.session.Snapshot())
}

// handleScenes lists the built-in scene presets
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(scene.ListAllScenes())
}

// writeJSONError writes {"error": message} with status
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
