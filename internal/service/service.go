// Package service orchestrates predictions: it gathers nearby reports and
// weather, runs the scoring engine, and optionally publishes the result.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/observability"
	"github.com/couchcryptid/water-risk-service/internal/scoring"
)

// ReportSource returns reports within a radius of a coordinate. Results must
// be ordered oldest first: the trend forecast treats the tail of the slice as
// the most recent reports.
type ReportSource interface {
	ReportsNear(ctx context.Context, c domain.Coordinate, radiusKm float64) ([]domain.HistoricalReport, error)
}

// WeatherSource returns the current weather at a coordinate. A nil snapshot
// means no data.
type WeatherSource interface {
	Current(ctx context.Context, c domain.Coordinate) (*domain.WeatherSnapshot, error)
}

// Publisher forwards prediction results downstream.
type Publisher interface {
	Publish(ctx context.Context, result domain.PredictionResult) error
}

// NoWeather is a WeatherSource that never has data.
type NoWeather struct{}

func (NoWeather) Current(context.Context, domain.Coordinate) (*domain.WeatherSnapshot, error) {
	return nil, nil
}

// Request is a single prediction request. Weather, when set, overrides the
// configured WeatherSource.
type Request struct {
	Location   domain.Coordinate
	TargetDate time.Time
	Weather    *domain.WeatherSnapshot
}

// Config wires the Service's collaborators. Publisher and Places are optional.
type Config struct {
	Engine   *scoring.Engine
	Reports  ReportSource
	Weather  WeatherSource
	Publish  Publisher
	Places   domain.PlaceResolver
	RadiusKm float64
}

// Service runs predictions.
type Service struct {
	engine    *scoring.Engine
	reports   ReportSource
	weather   WeatherSource
	publisher Publisher
	places    domain.PlaceResolver
	radiusKm  float64
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Service.
func New(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if cfg.Weather == nil {
		cfg.Weather = NoWeather{}
	}
	return &Service{
		engine:    cfg.Engine,
		reports:   cfg.Reports,
		weather:   cfg.Weather,
		publisher: cfg.Publish,
		places:    cfg.Places,
		radiusKm:  cfg.RadiusKm,
		metrics:   metrics,
		logger:    logger,
	}
}

// Predict scores req.Location. Failures of the report or weather source
// degrade to "no data" instead of failing the request; only an invalid
// coordinate is an error.
func (s *Service) Predict(ctx context.Context, req Request) (domain.PredictionResult, error) {
	start := time.Now()

	if err := req.Location.Validate(); err != nil {
		s.metrics.PredictionErrors.Inc()
		return domain.PredictionResult{}, err
	}

	reports := s.nearbyReports(ctx, req.Location)
	weather := req.Weather
	if weather == nil {
		weather = s.currentWeather(ctx, req.Location)
	}

	result, err := s.engine.Predict(req.Location, reports, weather, req.TargetDate)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		return domain.PredictionResult{}, err
	}

	s.metrics.Predictions.WithLabelValues(result.Quality.String()).Inc()
	s.metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("prediction complete",
		"id", result.ID,
		"score", result.Score,
		"quality", result.Quality.String(),
		"reports", result.ReportCount,
	)

	s.publish(ctx, result)
	return result, nil
}

// ResolvePlace returns a human-readable label for c. Without a configured
// resolver it returns the coordinate fallback label.
func (s *Service) ResolvePlace(ctx context.Context, c domain.Coordinate) string {
	if s.places == nil {
		return domain.FallbackPlaceLabel(c)
	}
	return s.places.ResolvePlaceName(ctx, c)
}

func (s *Service) nearbyReports(ctx context.Context, c domain.Coordinate) []domain.HistoricalReport {
	if s.reports == nil {
		return nil
	}
	reports, err := s.reports.ReportsNear(ctx, c, s.radiusKm)
	if err != nil {
		s.metrics.ReportSourceErrors.Inc()
		s.logger.Warn("report lookup failed, predicting without reports", "error", err)
		return nil
	}
	return reports
}

func (s *Service) currentWeather(ctx context.Context, c domain.Coordinate) *domain.WeatherSnapshot {
	w, err := s.weather.Current(ctx, c)
	if err != nil {
		s.logger.Warn("weather lookup failed, predicting without weather", "error", err)
		return nil
	}
	return w
}

func (s *Service) publish(ctx context.Context, result domain.PredictionResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, result); err != nil {
		s.metrics.PredictionsPublished.WithLabelValues("error").Inc()
		s.logger.Warn("publish prediction failed", "id", result.ID, "error", err)
		return
	}
	s.metrics.PredictionsPublished.WithLabelValues("success").Inc()
}
