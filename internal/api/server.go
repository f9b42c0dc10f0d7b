// Package api exposes the conversion pipeline over HTTP. It offers a
// synchronous convert endpoint that streams the result back and an
// asynchronous job API backed by a pluggable [Store].
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// maxUploadBytes bounds the total size of one multipart upload.
const maxUploadBytes = 256 << 20

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	store  Store
	log    *log.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(runner *pipeline.Runner, store Store, logger *log.Logger) *Server {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		store:  store,
		log:    logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Post("/api/convert", s.handleConvert)
	r.Post("/api/jobs", s.handleCreateJob)
	r.Get("/api/jobs/{jobID}", s.handleJobStatus)
	r.Get("/api/jobs/{jobID}/result", s.handleJobResult)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs incoming requests.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// jsonError writes a JSON error body with the given status.
func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// jsonResponse writes v as JSON with the given status.
func jsonResponse(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
