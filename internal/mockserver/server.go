// Package mockserver serves an in-memory implementation of the remitter API
// for local development and integration tests.
package mockserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Azahorscak/remitter-tui/internal/logger"
	"github.com/Azahorscak/remitter-tui/internal/remitter"
)

// Server holds one profile per authorised token.
type Server struct {
	log *slog.Logger

	mu       sync.Mutex
	users    map[string]bool // token -> may write
	profiles map[string]remitter.Profile
}

// New returns a server with no users. Use AddUser to authorise tokens.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		log:      log,
		users:    map[string]bool{},
		profiles: map[string]remitter.Profile{},
	}
}

// AddUser authorises token. Read-only users get 403 on writes.
func (s *Server) AddUser(token string, readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[token] = !readOnly
}

// Seed stores p as the profile of token.
func (s *Server) Seed(token string, p remitter.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[token] = p
}

// Profile returns the stored profile of token.
func (s *Server) Profile(token string) (remitter.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[token]
	return p, ok
}

// Router builds the HTTP handler.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/remitter", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Post("/", s.handleCreate)
		r.Put("/", s.handleUpdate)
	})
	return r
}

// requestLogger puts a request-scoped logger into the context and logs
// each completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = chimiddleware.GetReqID(r.Context())
		}
		log, ctx := logger.With(logger.ToContext(r.Context(), s.log),
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		log.Info("request completed", "status", ww.Status())
	})
}

type detailResponse struct {
	Detail any `json:"detail"`
}

type validationItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// authorise resolves the bearer token. It writes the error response itself
// and returns ok=false when the request must stop.
func (s *Server) authorise(w http.ResponseWriter, r *http.Request, write bool) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	canWrite, known := s.users[token]
	s.mu.Unlock()

	if !found || token == "" || !known {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return "", false
	}
	if write && !canWrite {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return "", false
	}
	return token, true
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := s.authorise(w, r, false)
	if !ok {
		return
	}
	p, ok := s.Profile(token)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Remitter details not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	token, ok := s.authorise(w, r, true)
	if !ok {
		return
	}
	p, ok := decodeBody(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	if _, exists := s.profiles[token]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Remitter details already exist")
		return
	}
	s.profiles[token] = p
	s.mu.Unlock()

	logger.FromContext(r.Context()).Info("remitter details created")
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	token, ok := s.authorise(w, r, true)
	if !ok {
		return
	}
	p, ok := decodeBody(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	if _, exists := s.profiles[token]; !exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Remitter details not found")
		return
	}
	s.profiles[token] = p
	s.mu.Unlock()

	logger.FromContext(r.Context()).Info("remitter details updated")
	writeJSON(w, http.StatusOK, p)
}

// decodeBody parses the request profile and rejects missing required fields
// with a list-style validation detail.
func decodeBody(w http.ResponseWriter, r *http.Request) (remitter.Profile, bool) {
	var p remitter.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: []validationItem{{
			Loc:  []string{"body"},
			Msg:  "invalid JSON body",
			Type: "json_invalid",
		}}})
		return remitter.Profile{}, false
	}

	missing := p.Missing()
	if len(missing) == 0 {
		return p, true
	}
	items := make([]validationItem, len(missing))
	for i, f := range missing {
		items[i] = validationItem{
			Loc:  []string{"body", f.Key()},
			Msg:  f.Key() + " is required",
			Type: "missing",
		}
	}
	writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: items})
	return remitter.Profile{}, false
}
