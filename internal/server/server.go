// Package server implements the BNDL HTTP API.
//
// The API accepts BNDL documents as JSON payloads and returns JSON
// envelopes. Recoverable warnings from parsing and replay are included
// in successful responses; fatal errors map to an error envelope whose
// code matches the [errors.Code] taxonomy.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/buildinfo"
	"github.com/KDB-USJP/BNDL-Lite/pkg/cache"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultTTL is the cache lifetime for computed results when the
	// configuration does not set one.
	DefaultTTL = time.Hour

	// maxBodyBytes caps request payloads. Exports of the largest
	// shipped archives stay well under this.
	maxBodyBytes = 16 << 20

	// shutdownGrace is how long Run waits for in-flight requests after
	// the context is cancelled.
	shutdownGrace = 10 * time.Second

	// requestIDHeader carries the request ID in both directions. An
	// incoming value is kept so proxies can correlate logs.
	requestIDHeader = "X-Request-ID"
)

// =============================================================================
// Server
// =============================================================================

// Config configures a Server.
type Config struct {
	// Logger receives request logs. Nil discards.
	Logger *log.Logger

	// Cache stores computed round, graph, script and render results.
	// Nil disables caching.
	Cache cache.Cache

	// TTL is the cache lifetime for stored results. Zero or negative
	// selects DefaultTTL.
	TTL time.Duration
}

// Server serves the BNDL HTTP API. Create one with New.
type Server struct {
	log     *log.Logger
	ttl     time.Duration
	rounds  cache.Cache
	graphs  cache.Cache
	scripts cache.Cache
	renders cache.Cache
}

// New creates a Server. The shared cache backend is partitioned into
// one scope per endpoint so keys cannot collide across result kinds.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Server{
		log:     logger,
		ttl:     ttl,
		rounds:  cache.NewScoped(cfg.Cache, "round:"),
		graphs:  cache.NewScoped(cfg.Cache, "graph:"),
		scripts: cache.NewScoped(cfg.Cache, "script:"),
		renders: cache.NewScoped(cfg.Cache, "render:"),
	}
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/round", s.handleRound)
		r.Post("/graph", s.handleGraph)
		r.Post("/script", s.handleScript)
		r.Post("/render", s.handleRender)
	})
	return r
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns each request a UUID unless the client sent one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests logs one line per request with status, size and timing.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}

// recoverPanics converts handler panics into 500 envelopes.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic", "value", rec, "request_id", requestIDFrom(r.Context()))
				s.writeError(w, errors.New(errors.ErrCodeInternal, "internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// =============================================================================
// Responses
// =============================================================================

// errorBody is the error half of a response envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", "err", err)
	}
}

// writeRaw sends a pre-encoded JSON body, as read back from the cache.
func (s *Server) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.log.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, statusFor(code), errorResponse{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeFormat, errors.ErrCodeParse, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidPath, errors.ErrCodeExportPrecondition,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeResolution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Health and Version
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type versionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Format  string `json:"format"`
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, versionResponse{
		Version: buildinfo.Version,
		Commit:  buildinfo.Commit,
		Date:    buildinfo.Date,
		Format:  bndl.Version,
	})
}
