// Package synthetic generates plausible reports and weather for demos,
// fixtures, and tests. It is never used by the scoring engine itself.
package synthetic

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

const (
	minScore   = 30.0
	maxScore   = 100.0
	maxAgeDays = 120
)

var conditions = []string{"Clear", "Partly Cloudy", "Overcast", "Light Rain", "Heavy Rain", "Thunderstorm"}

var reportTypes = []domain.ReportType{domain.ReportCommunity, domain.ReportSensor, domain.ReportOfficial}

// Generator produces deterministic pseudo-random inputs for a given seed.
// It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock clockwork.Clock
	seq   int
}

// NewGenerator creates a Generator. A nil clock uses the real clock.
func NewGenerator(seed uint64, clock clockwork.Clock) *Generator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		clock: clock,
	}
}

// Reports returns n reports scattered uniformly within radiusKm of center,
// aged up to 120 days, with scores in [30,100].
func (g *Generator) Reports(center domain.Coordinate, n int, radiusKm float64) []domain.HistoricalReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now().UTC()
	out := make([]domain.HistoricalReport, 0, n)
	for range n {
		g.seq++
		age := time.Duration(g.rng.Float64() * maxAgeDays * float64(24*time.Hour))
		out = append(out, domain.HistoricalReport{
			ID:           fmt.Sprintf("syn-%06d", g.seq),
			Location:     g.pointWithin(center, radiusKm),
			QualityScore: math.Round((minScore+g.rng.Float64()*(maxScore-minScore))*10) / 10,
			ReportedAt:   now.Add(-age).Truncate(time.Second),
			Type:         reportTypes[g.rng.IntN(len(reportTypes))],
		})
	}
	return out
}

// Weather returns a tropical weather snapshot: 20–35 °C, 40–95 % humidity,
// and 0–60 mm of rain.
func (g *Generator) Weather() *domain.WeatherSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	rain := math.Round(g.rng.Float64()*600) / 10
	label := conditions[g.rng.IntN(3)]
	switch {
	case rain > 40:
		label = conditions[5]
	case rain > 20:
		label = conditions[4]
	case rain > 5:
		label = conditions[3]
	}
	return &domain.WeatherSnapshot{
		TemperatureC: math.Round((20+g.rng.Float64()*15)*10) / 10,
		HumidityPct:  math.Round(40 + g.rng.Float64()*55),
		RainfallMm:   rain,
		Conditions:   label,
	}
}

// pointWithin samples a point uniformly from the disc of radiusKm around c.
func (g *Generator) pointWithin(c domain.Coordinate, radiusKm float64) domain.Coordinate {
	r := radiusKm * math.Sqrt(g.rng.Float64())
	theta := g.rng.Float64() * 2 * math.Pi

	dLat := r * math.Cos(theta) / 111.32
	cosLat := math.Max(math.Cos(c.Lat*math.Pi/180), 1e-6)
	dLon := r * math.Sin(theta) / (111.32 * cosLat)

	p := domain.Coordinate{
		Lat: math.Max(-90, math.Min(90, c.Lat+dLat)),
		Lon: c.Lon + dLon,
	}
	if p.Lon > 180 {
		p.Lon -= 360
	} else if p.Lon < -180 {
		p.Lon += 360
	}
	return p
}

// Current implements a weather source that ignores the location and returns
// a fresh synthetic snapshot.
func (g *Generator) Current(_ context.Context, _ domain.Coordinate) (*domain.WeatherSnapshot, error) {
	return g.Weather(), nil
}
