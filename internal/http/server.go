package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"userdir/pkg/types"
	"userdir/pkg/userstore"
)

const (
	contentTypeJSON        = "application/json"
	defaultHTTPPort        = "8080"
	defaultShutdownTimeout = time.Second * 5
)

// Server serves one partition's share of the user directory over HTTP.
type Server struct {
	store      *userstore.Store
	httpServer *http.Server
	URL        string
	addr       string
}

// NewServer creates a new partition server backed by the given store.
func NewServer(store *userstore.Store, port string) *Server {
	if port == "" {
		port = defaultHTTPPort
	}
	return &Server{
		store: store,
		URL:   "http://localhost:" + port,
		addr:  ":" + port,
	}
}

// Start starts the server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.createRouter(),
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("partition server started", "addr", s.URL)
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	return nil
}

// Handler exposes the router, mainly so tests can serve the partition API
// from an httptest server.
func (s *Server) Handler() http.Handler {
	return s.createRouter()
}

// createRouter builds chi router
func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Post("/api/users", s.handleAdd)
	r.Get("/api/users", s.handleList)
	r.Get("/api/users/{id}", s.handleGet)
	r.Put("/api/users/{id}", s.handleUpdate)
	r.Delete("/api/users/{id}", s.handleDelete)

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var u types.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Failed to parse user"))
		return
	}
	if u.ID == "" {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Missing user id"))
		return
	}

	id := s.store.Add(u)
	slog.Info("user added", "id", id, "request_id", requestID(r))
	s.writeJSON(w, http.StatusOK, NewIDResponse(id))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, ok := s.store.Get(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("User not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, NewUserResponse(u))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var u types.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Failed to parse user"))
		return
	}
	// the path, not the body, names the record
	u.ID = id

	if !s.store.Update(u) {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("User not found"))
		return
	}
	slog.Info("user updated", "id", id, "request_id", requestID(r))
	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !s.store.Delete(id) {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("User not found"))
		return
	}
	slog.Info("user deleted", "id", id, "request_id", requestID(r))
	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	users := s.store.List()
	slog.Info("partition listed", "count", len(users), "request_id", requestID(r))
	s.writeJSON(w, http.StatusOK, NewUsersResponse(users))
}

func requestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}
