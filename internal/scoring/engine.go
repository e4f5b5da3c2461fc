package scoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

// Engine produces water quality predictions. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	regions Regions
	clock   clockwork.Clock
}

// NewEngine creates an Engine. A nil clock uses the real clock.
func NewEngine(regions Regions, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{regions: regions, clock: clock}
}

// Predict scores loc from the supplied reports and weather. Report ages and the
// seasonal modifier use target when it is set and the current time otherwise.
// A nil weather snapshot means no weather data. The reports slice is not modified.
func (e *Engine) Predict(loc domain.Coordinate, reports []domain.HistoricalReport, weather *domain.WeatherSnapshot, target time.Time) (domain.PredictionResult, error) {
	if err := loc.Validate(); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("predict: %w", err)
	}

	now := e.clock.Now().UTC()
	ref := now
	if !target.IsZero() {
		ref = target
	}

	factors := domain.ScoreFactors{
		Base:      BaseScore(loc, reports, ref),
		Weather:   WeatherImpact(weather),
		Seasonal:  SeasonalImpact(ref.Month()),
		Proximity: e.regions.ProximityImpact(loc),
	}
	score := clamp(factors.Base+factors.Weather+factors.Seasonal+factors.Proximity, 0, 100)

	quality := ClassifyQuality(score)
	risk := ClassifyRisk(score)
	contaminants := InferContaminants(score, weather)

	return domain.PredictionResult{
		ID:              uuid.NewString(),
		Score:           score,
		Quality:         quality,
		Risk:            risk,
		Confidence:      Confidence(len(reports), weather != nil),
		Contaminants:    contaminants,
		Recommendations: Recommendations(quality, risk, contaminants),
		Trend:           ForecastTrend(reports, score, weather),
		Factors:         factors,
		ReportCount:     len(reports),
		PredictedAt:     now,
		Location:        loc,
	}, nil
}
