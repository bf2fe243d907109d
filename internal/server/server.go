package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"transitgraph/internal/realtime"
	"transitgraph/internal/timetable"
)

// Server exposes the observability surface: per-feed connection state
// and aggregate update counters. It serves no query API; searches
// consume the timetable in-process.
type Server struct {
	router  *mux.Router
	port    int
	tt      *timetable.Timetable
	manager *realtime.Manager
	status  *realtime.StatusSink
	logger  *slog.Logger
}

// New creates a Server with its routes registered.
func New(port int, tt *timetable.Timetable, manager *realtime.Manager, status *realtime.StatusSink, logger *slog.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		port:    port,
		tt:      tt,
		manager: manager,
		status:  status,
		logger:  logger,
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	return s
}

// Handler returns the server's HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.router, s.logger)
}

// ListenAndServe blocks serving the status endpoints.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.logger.Info("status server listening", "port", s.port)
	return srv.ListenAndServe()
}

// handleHealth reports ready only once every feed is primed. An
// unprimed feed is not-ready, never an error, matching the feed
// boundary contract.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, f := range s.manager.Status() {
		if !f.Primed {
			http.Error(w, "priming", http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("ok"))
}

type statusResponse struct {
	Feeds    []realtime.FeedStatus            `json:"feeds"`
	Updates  map[string]realtime.FeedCounters `json:"updates"`
	Patterns int                              `json:"patterns"`
	Stops    int                              `json:"stops"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.tt.Snapshot()
	resp := statusResponse{
		Feeds:    s.manager.Status(),
		Updates:  s.status.Counters(),
		Patterns: snap.NumPatterns(),
		Stops:    snap.NumStops(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode status response", "error", err)
	}
}
