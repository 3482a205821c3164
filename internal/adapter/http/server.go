package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// User-facing error messages. Internal detail never reaches the response.
const (
	msgNoData          = "No data provided"
	msgMissingZip      = "Please enter both origin and destination zip codes"
	msgMalformedZip    = "Please enter valid 5-digit zip codes"
	msgUnknownZip      = "Invalid zip code(s). Please enter valid 5-digit US zip codes."
	msgUnavailable     = "Shipping data is temporarily unavailable. Please try again later."
	msgCalculation     = "An error occurred during calculation. Please try again."
	maxRequestBodySize = 1 << 16
)

// Estimator computes shipping estimates for validated postal codes.
type Estimator interface {
	Estimate(ctx context.Context, origin, destination string) (domain.ShippingEstimate, error)
}

// CalculateRequest is the body of POST /api/calculate.
type CalculateRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the estimate API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	estimator  Estimator
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/calculate, /health, /healthz,
// /readyz, and /metrics routes.
func NewServer(addr string, estimator Estimator, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		estimator: estimator,
		logger:    logger,
	}

	mux.HandleFunc("POST /api/calculate", s.handleCalculate)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCalculateRequest(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if !ok {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	origin, destination, err := domain.ValidateRoute(req.Origin, req.Destination)
	switch {
	case errors.Is(err, domain.ErrMissingPostalCode):
		writeError(w, http.StatusBadRequest, msgMissingZip)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, msgMalformedZip)
		return
	}

	est, err := s.estimator.Estimate(r.Context(), string(origin), string(destination))
	if err != nil {
		s.writeEstimateError(w, err)
		return
	}

	w.Header().Set("X-Estimate-ID", est.ID)
	writeJSON(w, http.StatusOK, est)
}

// decodeCalculateRequest reports false for bodies that carry no data: invalid
// JSON, null, an empty object, or fields of the wrong type.
func decodeCalculateRequest(body io.Reader) (CalculateRequest, bool) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil || len(fields) == 0 {
		return CalculateRequest{}, false
	}
	var req CalculateRequest
	if raw, ok := fields["origin"]; ok && json.Unmarshal(raw, &req.Origin) != nil {
		return CalculateRequest{}, false
	}
	if raw, ok := fields["destination"]; ok && json.Unmarshal(raw, &req.Destination) != nil {
		return CalculateRequest{}, false
	}
	return req, true
}

func (s *Server) writeEstimateError(w http.ResponseWriter, err error) {
	var loadErr *domain.DatasetLoadError
	switch {
	case errors.Is(err, domain.ErrUnknownPostalCode):
		writeError(w, http.StatusBadRequest, msgUnknownZip)
	case errors.As(err, &loadErr):
		s.logger.Error("estimate unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
	default:
		// The estimator has already logged calculation failures in full.
		writeError(w, http.StatusInternalServerError, msgCalculation)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
