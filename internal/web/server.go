package web

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jherrick/sattrack/internal/feed"
	"github.com/jherrick/sattrack/internal/metrics"
	"github.com/jherrick/sattrack/internal/store"
)

//go:embed static/index.html
var indexHTML []byte

// Feed is the view's read-only surface onto the connection manager.
type Feed interface {
	Status() feed.StatusSnapshot
	StatusUpdates() <-chan feed.StatusSnapshot
}

// Server hosts the view UI and JSON API.
type Server struct {
	store          *store.Store
	feed           Feed
	hub            *Hub
	logger         *slog.Logger
	allowedOrigins []string
}

// NewServer creates the view server.
func NewServer(st *store.Store, f Feed, allowedOrigins []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		store:          st,
		feed:           f,
		hub:            NewHub(st, f, logger),
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// Start launches the browser relay pump. It returns immediately; the
// pump stops when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		MaxAge:         300,
	}))
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/satellites", s.handleSatellites)
		r.Get("/status", s.handleStatus)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleSatellites(w http.ResponseWriter, r *http.Request) {
	sats := s.store.Snapshot()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(sats),
		"satellites": sats,
	})
}

// statusResponse extends the feed snapshot with the store size.
type statusResponse struct {
	feed.StatusSnapshot
	Satellites int `json:"satellites"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		StatusSnapshot: s.feed.Status(),
		Satellites:     s.store.Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.feed.Status()

	health := struct {
		Status     string                 `json:"status"`
		Components map[string]interface{} `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]interface{}),
	}

	health.Components["feed"] = map[string]interface{}{
		"status":            string(snap.Status),
		"messages_received": snap.MessagesReceived,
	}
	health.Components["store"] = map[string]interface{}{
		"satellites": s.store.Len(),
	}

	if snap.Status != feed.StatusConnected {
		health.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through so the /ws upgrade works behind instrumentation.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// instrument records request metrics and a debug log line per request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		duration := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(
			routePattern,
			r.Method,
			strconv.Itoa(wrapped.statusCode),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			routePattern,
			r.Method,
		).Observe(duration.Seconds())

		s.logger.Debug("http request",
			"method", r.Method,
			"endpoint", routePattern,
			"status_code", wrapped.statusCode,
			"duration_ms", duration.Milliseconds(),
		)
	})
}
