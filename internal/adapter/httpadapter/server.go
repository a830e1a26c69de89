package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/avi-report-etl/internal/domain"
)

const maxDocumentBytes = 1 << 20

// DocumentCompleter completes the times of one report envelope.
type DocumentCompleter interface {
	CompleteDocument(ctx context.Context, body []byte, referenceTime string) (domain.CompletionResult, error)
}

// Server exposes health, readiness, metrics and report completion endpoints.
type Server struct {
	httpServer *http.Server
	completer  DocumentCompleter
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /v1/reports/complete routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, completer DocumentCompleter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		completer: completer,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/reports/complete", s.handleComplete)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleComplete resolves the times of a posted envelope. The optional
// referenceTime query parameter anchors envelopes that carry no referenceTime.
// It answers 200 when every time resolved and 422 with the partial result
// otherwise.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	res, err := s.completer.CompleteDocument(r.Context(), body, r.URL.Query().Get("referenceTime"))
	var pce *domain.PartialCompletionError
	switch {
	case errors.As(err, &pce):
		writeJSON(w, http.StatusUnprocessableEntity, res)
	case err != nil:
		s.logger.Debug("completion request rejected", "error", err)
		writeError(w, http.StatusBadRequest, err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
