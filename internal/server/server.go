// Package server exposes the scheduler over HTTP: POST a catalog to /schedule
// and receive the packed tracks, with unscheduled talks listed explicitly.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kingrea/trackplan/internal/catalog"
	"github.com/kingrea/trackplan/internal/config"
	"github.com/kingrea/trackplan/internal/format"
	"github.com/kingrea/trackplan/internal/logbook"
	"github.com/kingrea/trackplan/internal/scheduler"
	"github.com/kingrea/trackplan/internal/talk"
	"github.com/kingrea/trackplan/internal/timeline"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

const (
	// DefaultMaxBodyBytes caps a POST /schedule catalog at 1 MB.
	DefaultMaxBodyBytes int64 = 1 << 20

	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// Settings is where the API binds and how much it accepts per request.
// Zero limits fall back to the defaults above.
type Settings struct {
	Enabled      bool
	Address      string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewSettings derives Settings from the resolved server block of config.yaml.
func NewSettings(sc config.ServerConfig) Settings {
	return Settings{Enabled: sc.IsEnabled(), Address: sc.Address()}
}

func (st Settings) withDefaults() Settings {
	if st.MaxBodyBytes <= 0 {
		st.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if st.ReadTimeout <= 0 {
		st.ReadTimeout = defaultReadTimeout
	}
	if st.WriteTimeout <= 0 {
		st.WriteTimeout = defaultWriteTimeout
	}
	if st.IdleTimeout <= 0 {
		st.IdleTimeout = defaultIdleTimeout
	}
	return st
}

// ErrServerDisabled is returned by Start when the settings disable the API.
var ErrServerDisabled = errors.New("server: disabled by configuration")

// Server wraps the HTTP listener and handlers backing the scheduling API.
type Server struct {
	settings Settings
	planner  scheduler.Planner
	history  Recorder
	logger   Logger
	clock    func() time.Time

	mu          sync.RWMutex
	server      *http.Server
	listener    net.Listener
	status      ServerStatus
	startTime   time.Time
	routerReady bool
}

// Option customizes server construction.
type Option func(*Server)

// WithHistory records every scheduling request in the run history.
func WithHistory(r Recorder) Option {
	return func(s *Server) {
		if r != nil {
			s.history = r
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares an API server that schedules with planner.
func NewServer(settings Settings, planner scheduler.Planner, opts ...Option) *Server {
	s := &Server{
		settings: settings.withDefaults(),
		planner:  planner,
		history:  nopRecorder{},
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler builds the router. Start serves it; tests may mount it directly.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(recovery(s.logger))
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})

	r.Get("/health", s.handleHealth)
	r.Head("/health", s.handleHealth)
	r.Post("/schedule", s.handleSchedule)
	r.Get("/sample", s.handleSample)
	return r
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server: server is nil")
	}
	if !s.settings.Enabled {
		return ErrServerDisabled
	}
	if s.planner == nil {
		return fmt.Errorf("server: a planner is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server: already started")
	}
	addr := s.settings.Address
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.routerReady = true
	s.startTime = s.clock()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("server: serve error: %v", err)
		}
	}()
	s.logger.Printf("server: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return "http://" + s.settings.Address
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(s.now().Sub(s.startTime).Seconds())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.routerReady
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       ProtocolVersion,
		RouterReady:   ready,
		UptimeSeconds: s.uptimeSeconds(),
		ServerTime:    s.now(),
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "empty body"})
		return
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unable to read body"})
		return
	}
	var req ScheduleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	talks, err := req.Catalog()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.respondWithSchedule(w, r, "api", talks)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	s.respondWithSchedule(w, r, "sample", catalog.Sample())
}

func (s *Server) respondWithSchedule(w http.ResponseWriter, r *http.Request, source string, talks []talk.Talk) {
	result := s.planner.Schedule(talks)
	timelines, err := timeline.BuildSchedule(result.Schedule, s.planner.Table())
	if err != nil {
		s.logger.Printf("server: build timeline: %v", err)
		s.history.Error("run source=%s talks=%d failed: %v", source, len(talks), err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "timeline construction failed"})
		return
	}
	runID := logbook.NewRunID()
	s.history.Record(logbook.Run{
		ID:          runID,
		Source:      source,
		Talks:       len(talks),
		Scheduled:   len(result.Placements),
		Unscheduled: len(result.Skipped),
		Outcome:     string(result.Outcome()),
	})
	s.logger.Printf("server: run %s scheduled %d/%d talks id=%s", runID, len(result.Placements), len(talks), RequestIDFrom(r.Context()))
	writeJSON(w, http.StatusOK, format.NewDocument(runID, result, timelines))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type nopRecorder struct{}

func (nopRecorder) Record(logbook.Run) {}

func (nopRecorder) Error(string, ...any) {}
