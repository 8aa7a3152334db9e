package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"momentum-scanner/internal/scanner"
	"momentum-scanner/internal/storage"
)

// defaultAlertsLimit bounds /alerts responses when no limit is given.
const defaultAlertsLimit = 100

// Server serves the scanner's HTTP surface.
type Server struct {
	scanner *scanner.Scanner
	store   storage.AlertStore
	metrics http.Handler // optional
	hub     *Hub         // optional
	logger  *log.Logger

	httpServer *http.Server
}

// Options contains dependencies for creating a Server.
type Options struct {
	Addr    string
	Scanner *scanner.Scanner
	Store   storage.AlertStore
	Metrics http.Handler // optional
	Hub     *Hub         // optional
	Logger  *log.Logger
}

// NewServer creates a Server listening on opts.Addr.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		scanner: opts.Scanner,
		store:   opts.Store,
		metrics: opts.Metrics,
		hub:     opts.Hub,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/alerts", s.handleAlerts)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	if s.hub != nil {
		mux.Handle("/ws", s.hub)
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("http server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleStatus returns the scanner's status snapshot as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.scanner.Status())
}

// handleAlerts returns recent alerts, newest first. An optional ?limit=N
// caps the response; invalid values are a client error.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	alerts, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Printf("list alerts: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, alerts)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}
