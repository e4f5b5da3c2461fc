package scoring

import (
	"time"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

// WeatherImpact is the additive score adjustment for a weather snapshot.
// Rainfall, temperature, and humidity rules are independent and summed.
// A nil snapshot has no impact.
func WeatherImpact(w *domain.WeatherSnapshot) float64 {
	if w == nil {
		return 0
	}

	var impact float64
	switch {
	case w.RainfallMm > 50:
		impact -= 15
	case w.RainfallMm > 20:
		impact -= 8
	case w.RainfallMm > 5:
		impact -= 3
	}

	switch {
	case w.TemperatureC > 30:
		impact -= 5
	case w.TemperatureC < 10:
		impact += 2
	}

	if w.HumidityPct > 80 {
		impact -= 3
	}
	return impact
}

// SeasonalImpact penalizes April through October, used as a wet-season proxy,
// more heavily than the rest of the year.
func SeasonalImpact(month time.Month) float64 {
	if month >= time.April && month <= time.October {
		return -8
	}
	return -2
}

// ProximityImpact is the additive adjustment for coastal and urban membership.
// Both may apply.
func (r Regions) ProximityImpact(c domain.Coordinate) float64 {
	var impact float64
	if r.IsCoastal(c) {
		impact -= 5
	}
	if r.IsUrban(c) {
		impact -= 3
	}
	return impact
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
