// Package server is a read-only HTTP inspector for a live recording session.
// It serves the current export and stats, and pushes periodic stats to
// WebSocket clients.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

const defaultBroadcastInterval = time.Second

// Session is the view of a recording session the inspector needs.
// *recorder.Session satisfies it.
type Session interface {
	Config() recording.Config
	State() recorder.State
	Elapsed() time.Duration
	Export() recording.Export
}

// Server is the Rewind HTTP inspector.
type Server struct {
	httpServer *http.Server
	session    Session
	hub        *Hub
	clock      clock.Clock
	logger     *slog.Logger

	interval time.Duration
	origins  []string
	limiter  *exportLimiter

	limitRate   int
	limitWindow time.Duration
	limitBurst  int

	stopOnce sync.Once
	stop     chan struct{}
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock sets the clock that paces stats broadcasts.
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithBroadcastInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAllowedOrigins sets the CORS origins. The default allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithExportRateLimit allows each client rate /api/export requests per
// window with bursts up to burst. A non-positive rate disables the limit.
func WithExportRateLimit(rate int, window time.Duration, burst int) Option {
	return func(s *Server) {
		if rate <= 0 || window <= 0 {
			s.limitRate = 0
			return
		}
		s.limitRate, s.limitWindow, s.limitBurst = rate, window, burst
	}
}

// New creates a new inspector for sess.
func New(addr string, sess Session, opts ...Option) *Server {
	s := &Server{
		session:  sess,
		clock:    clock.NewRealClock(),
		interval: defaultBroadcastInterval,
		origins:  []string{"*"},
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.hub = NewHub(s.logger)
	if s.limitRate > 0 {
		s.limiter = newExportLimiter(s.limitRate, s.limitWindow, s.limitBurst, s.clock)
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDHeader)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/dashboard", s.handleDashboard)
	if s.limiter != nil {
		r.Get("/api/export", s.limiter.limited(s.handleExport))
	} else {
		r.Get("/api/export", s.handleExport)
	}
	r.Get("/api/stats", s.handleStats)
	r.Get("/ws", s.hub.HandleWebSocket)
	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "rewind",
		"status":  "running",
		"app":     s.session.Config().AppName,
		"time":    s.clock.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(DashboardHTML))
}

// handleExport serves the canonical document, or an indented rendering
// with ?pretty=1.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	e := s.session.Export()

	var (
		data []byte
		err  error
	)
	if r.URL.Query().Get("pretty") != "" {
		data, err = recording.MarshalIndent(e)
	} else {
		data, err = recording.Marshal(e)
	}
	if err != nil {
		s.logger.Error("encoding export failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encoding export failed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `inline; filename="recording.json"`)
	_, _ = w.Write(data)
}

// StatsMessage is the body of /api/stats and of every WebSocket broadcast.
type StatsMessage struct {
	Type      string                 `json:"type"`
	App       string                 `json:"app"`
	State     string                 `json:"state"`
	ElapsedMS int64                  `json:"elapsed_ms"`
	Stats     recording.Stats        `json:"stats"`
	ByKind    map[recording.Kind]int `json:"by_kind"`
}

func (s *Server) statsMessage() StatsMessage {
	e := s.session.Export()
	return StatsMessage{
		Type:      "stats",
		App:       e.Config.AppName,
		State:     s.session.State().String(),
		ElapsedMS: s.session.Elapsed().Milliseconds(),
		Stats:     e.Stats,
		ByKind:    e.CountByKind(),
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statsMessage())
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.clock.After(s.interval):
		}
		if s.hub.ClientCount() == 0 {
			continue
		}
		s.hub.Broadcast(s.statsMessage())
	}
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.StartOnListener(ln)
}

// StartOnListener begins serving on the provided listener.
// Useful for tests that need to pick an ephemeral port.
func (s *Server) StartOnListener(ln net.Listener) error {
	s.logger.Info("inspector listening", "addr", ln.Addr().String())
	go s.broadcastLoop()
	return s.httpServer.Serve(ln)
}

// Shutdown stops broadcasts, disconnects WebSocket clients and gracefully
// shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.hub.CloseAll()
	return s.httpServer.Shutdown(ctx)
}
