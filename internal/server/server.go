// Package server exposes the tabulation modes over HTTP, together with a
// Prometheus endpoint and a health check.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/request"
)

const requestIDHeader = "X-Request-Id"

// Default timeouts.
const (
	DefaultRequestTimeout  = 2 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 10 * time.Second
	idleTimeout            = 60 * time.Second
)

// Modes served under /v1/.
var Modes = []string{
	request.ModeTabulate,
	request.ModeSummary,
	request.ModeCompare,
	request.ModeRank,
	request.ModeTimeSeries,
}

// Config holds the listener settings.
type Config struct {
	Addr            string
	GeographyLimit  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server serves request documents posted to /v1/{mode}.
type Server struct {
	tabulator  request.Tabulator
	catalog    request.Catalog
	cfg        Config
	logger     logging.Logger
	metrics    *Metrics
	security   SecurityConfig
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetrics shares a metrics registry with other components.
func WithMetrics(m *Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithSecurityConfig replaces DefaultSecurityConfig.
func WithSecurityConfig(c SecurityConfig) Option { return func(s *Server) { s.security = c } }

// NewServer creates a server running tabulations on t with ids resolved
// against cat.
func NewServer(t request.Tabulator, cat request.Catalog, cfg Config, opts ...Option) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		tabulator: t,
		catalog:   cat,
		cfg:       cfg,
		logger:    logging.NopLogger{},
		security:  DefaultSecurityConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, SecurityMiddleware(s.security, s.requestIDMiddleware(s.metricsMiddleware(h))))
	}
	for _, mode := range Modes {
		route("/v1/"+mode, s.handleTabulation(mode))
	}
	route("/health", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// Start listens on the configured address until ctx is canceled, then
// drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.ListenAndServe() }()
	s.logger.Info("server listening", logging.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return apperrors.WrapError(err, "listen on %s", s.cfg.Addr)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.WrapError(err, "shutdown")
	}
	return nil
}

type requestIDKey struct{}

// requestIDMiddleware propagates the caller's X-Request-Id or assigns one.
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	}
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTabulation decodes a request document, runs mode and writes the
// result as JSON.
func (s *Server) handleTabulation(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var doc request.Document
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, r, http.StatusRequestEntityTooLarge, "request document too large")
				return
			}
			writeError(w, r, http.StatusBadRequest, "invalid request document: "+err.Error())
			return
		}

		resolved, err := request.Resolve(doc, mode, s.catalog, s.cfg.GeographyLimit)
		if err != nil {
			s.fail(w, r, mode, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		start := time.Now()
		result, err := request.Execute(ctx, s.tabulator, mode, resolved)
		if err != nil {
			s.fail(w, r, mode, err)
			return
		}
		s.logger.Info("tabulation served",
			logging.String("request_id", requestID(r.Context())),
			logging.String("mode", mode),
			logging.Duration("duration", time.Since(start)),
		)
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, mode string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("tabulation failed", err,
			logging.String("request_id", requestID(r.Context())),
			logging.String("mode", mode),
		)
	}
	writeError(w, r, status, err.Error())
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var (
		validErr     apperrors.ValidationError
		cfgErr       apperrors.ConfigError
		notFoundErr  apperrors.NotFoundError
		transportErr apperrors.TransportError
		timeoutErr   apperrors.TimeoutError
	)
	switch {
	case errors.As(err, &validErr), errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":     map[string]string{"message": message},
		"requestId": requestID(r.Context()),
	})
}
