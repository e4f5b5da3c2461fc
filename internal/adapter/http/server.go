package http

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/service"
)

const (
	writeTimeout = 30 * time.Second

	// placeLookupTimeout stays below writeTimeout so callers queued behind
	// geocoder pacing still receive the fallback label.
	placeLookupTimeout = 25 * time.Second
)

// Predictor is the prediction surface served over HTTP.
type Predictor interface {
	Predict(ctx context.Context, req service.Request) (domain.PredictionResult, error)
	ResolvePlace(ctx context.Context, c domain.Coordinate) string
}

// Server exposes the prediction API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	predictor  Predictor
	validate   *validator.Validate
	logger     *slog.Logger

	placeTimeout time.Duration
}

// NewServer creates an HTTP server with the /v1 API plus /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, predictor Predictor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		predictor: predictor,
		validate:  newValidator(),
		logger:    logger,

		placeTimeout: placeLookupTimeout,
	}

	mux.HandleFunc("POST /v1/predictions", s.handlePredict)
	mux.HandleFunc("GET /v1/places", s.handlePlace)
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

// resolvePlace bounds the lookup so a long pacing queue degrades to the
// fallback label instead of a cut-off response.
func (s *Server) resolvePlace(ctx context.Context, c domain.Coordinate) string {
	ctx, cancel := context.WithTimeout(ctx, s.placeTimeout)
	defer cancel()
	return s.predictor.ResolvePlace(ctx, c)
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
