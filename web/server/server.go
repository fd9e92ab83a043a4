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

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/log"
	"github.com/df07/go-collision-demos/pkg/sim"
)

const (
	defaultStreamTicks = 500
	maxCount           = 1000
	maxIntervalMs      = 1000
)

// Server handles web requests for the collision demos
type Server struct {
	cfg config.Config
	log log.Log
}

// NewServer creates a new web server
func NewServer(cfg config.Config, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Server{cfg: cfg, log: logger.With(log.String("component", "server"))}
}

// DemoRequest is a parsed stream or session request
type DemoRequest struct {
	Demo   config.DemoConfig
	Ticks  int  // Steps to run before the stream completes
	Paused bool // Start with animation off
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/demos", s.handleDemos)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/simulate", s.handleSimulate)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	return s.logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting web server", log.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("Shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("Request handled",
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
			log.Duration("elapsed", time.Since(start)))
	})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDemos lists the available demos with their key bindings
func (s *Server) handleDemos(w http.ResponseWriter, r *http.Request) {
	type demoInfo struct {
		sim.Info
		IntervalMs int64                  `json:"interval_ms"`
		Bindings   map[string]sim.Command `json:"bindings"`
	}

	demos := make([]demoInfo, 0, len(sim.Names()))
	for _, info := range sim.List() {
		d, err := sim.New(config.DemoConfig{Name: info.Name, Count: 1}, nil)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		demos = append(demos, demoInfo{
			Info:       info,
			IntervalMs: d.Interval().Milliseconds(),
			Bindings:   d.Bindings(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"default": s.cfg.Demo.Name,
		"demos":   demos,
		"limits": map[string]any{
			"count":       map[string]int{"min": 0, "max": maxCount},
			"ticks":       map[string]int{"min": 1, "max": s.maxTicks()},
			"interval_ms": map[string]int{"min": 0, "max": maxIntervalMs},
		},
	})
}

// handlePresets lists the preset files found on disk
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	presets, err := config.ListPresets()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

// parseDemoRequest reads demo selection from the query, starting from the configured demo
func (s *Server) parseDemoRequest(r *http.Request) (*DemoRequest, error) {
	q := r.URL.Query()
	req := &DemoRequest{Demo: s.cfg.Demo}

	if id := q.Get("preset"); id != "" {
		cfg, _, err := config.LoadPreset(id)
		if err != nil {
			return nil, err
		}
		req.Demo = cfg.Demo
	}

	if name := q.Get("demo"); name != "" {
		if name != req.Demo.Name {
			// Counts are per demo; a different demo starts from its own default
			req.Demo.Count = 0
		}
		req.Demo.Name = name
	}

	var err error
	if req.Demo.Count, err = parseIntParam(q, "count", req.Demo.Count, 0, maxCount); err != nil {
		return nil, err
	}
	if req.Demo.IntervalMs, err = parseIntParam(q, "interval", req.Demo.IntervalMs, 0, maxIntervalMs); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(q, "seed", int(req.Demo.Seed), 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Demo.Seed = int64(seed)

	maxTicks := s.maxTicks()
	if req.Ticks, err = parseIntParam(q, "ticks", min(defaultStreamTicks, maxTicks), 1, maxTicks); err != nil {
		return nil, err
	}

	if mode := q.Get("collision_mode"); mode != "" {
		req.Demo.CollisionMode = mode
	}
	if v := q.Get("check_spheres"); v != "" {
		if req.Demo.CheckSphereSphere, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid check_spheres: %s", v)
		}
	}
	if v := q.Get("paused"); v != "" {
		if req.Paused, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid paused: %s", v)
		}
	}

	cfg := s.cfg
	cfg.Demo = req.Demo
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// maxTicks bounds a single stream; an unset limit falls back to the default
func (s *Server) maxTicks() int {
	if s.cfg.Server.MaxTicks > 0 {
		return s.cfg.Server.MaxTicks
	}
	return config.Default().Server.MaxTicks
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
