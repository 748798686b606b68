// Package server exposes a session over HTTP: a small JSON API plus a
// websocket that streams table updates and accepts actions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/holdem-coach/internal/session"
	"github.com/lox/holdem-coach/internal/training"
)

// Server serves one session.
type Server struct {
	session  *session.Session
	logger   *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[*Connection]bool
}

// NewServer creates the HTTP handler for sess.
func NewServer(sess *session.Session, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		session: sess,
		logger:  logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		connections: make(map[*Connection]bool),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/state", s.handleState)
		r.Post("/hands", s.handleStartHand)
		r.Post("/actions", s.handleAction)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{id}", s.handleHand)
		r.Post("/history/{id}/analysis", s.handleAnalysis)
		r.Get("/profile", s.handleProfile)
		r.Post("/assessment", s.handleAssessment)
	})
	r.Get("/ws", s.handleWebSocket)
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeConnections()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "took", time.Since(start))
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleStartHand(w http.ResponseWriter, r *http.Request) {
	var req StartHandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.session.StartHand(r.Context(), req.Players); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.session.Snapshot())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.session.Act(s.session.UserID(), req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.History())
}

func (s *Server) handleHand(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.session.Hand(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, session.ErrUnknownHand)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.session.AnalyzeHand(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ProfileResponse is the body of GET /api/profile.
type ProfileResponse struct {
	Profile training.Profile `json:"profile"`
	Stats   training.Stats   `json:"stats"`
	WinRate float64          `json:"win_rate"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p := s.session.Profile()
	writeJSON(w, http.StatusOK, ProfileResponse{
		Profile: p,
		Stats:   training.Summarize(s.session.History(), s.session.UserID()),
		WinRate: p.WinRate(),
	})
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	if err := s.session.StartAssessment(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	c := NewConnection(conn, s.session, s.logger)

	s.mu.Lock()
	s.connections[c] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	go func() {
		c.Run()
		s.mu.Lock()
		delete(s.connections, c)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "total", total)
	}()
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.connections {
		_ = c.Close()
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, ErrorData{Code: code, Message: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorData{Code: "bad_request", Message: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
