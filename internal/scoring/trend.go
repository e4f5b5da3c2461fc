package scoring

import "github.com/couchcryptid/water-risk-service/internal/domain"

const (
	// minTrendReports is the history needed before a trend is computed.
	minTrendReports = 3

	// trendWindow is how many of the most recent reports are averaged.
	trendWindow = 10

	directionThreshold = 5.0
)

// ForecastTrend compares the current score with the mean of the last
// trendWindow reports, taken in the order they were supplied.
func ForecastTrend(reports []domain.HistoricalReport, current float64, weather *domain.WeatherSnapshot) domain.Trend {
	if len(reports) < minTrendReports {
		return domain.Trend{
			Direction:     domain.DirectionStable,
			Forecast7Day:  current,
			Forecast30Day: current,
		}
	}

	recent := reports
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}
	var sum float64
	for _, r := range recent {
		sum += r.QualityScore
	}
	rate := current - sum/float64(len(recent))

	direction := domain.DirectionStable
	switch {
	case rate > directionThreshold:
		direction = domain.DirectionImproving
	case rate < -directionThreshold:
		direction = domain.DirectionDeclining
	}

	f7 := current + rate*0.5
	f30 := current + rate*2.0
	if weather.RainfallOrZero() > 30 {
		f7 -= 10
		f30 -= 8
	}

	return domain.Trend{
		Direction:     direction,
		ChangeRate:    rate,
		Forecast7Day:  clamp(f7, 0, 100),
		Forecast30Day: clamp(f30, 0, 100),
	}
}
