// Command validate replays a report fixture through the scoring engine and
// checks the invariants every prediction must hold: bounded scores,
// consistent classifications, determinism, rain sensitivity, and the prior
// for locations without nearby evidence.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -reports data/mock/reports_mumbai.jsonl \
//	  -lat 19.0760 -lon 72.8777
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/scoring"
	"github.com/couchcryptid/water-risk-service/internal/store"
)

// validationTime matches the genmock fixture anchor.
var validationTime = time.Date(2026, time.May, 1, 6, 0, 0, 0, time.UTC)

const (
	gridSteps    = 5
	gridSpanDeg  = 0.1
	lookupRadius = 10.0
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type harness struct {
	engine  *scoring.Engine
	reports *store.Memory
}

func (h harness) predict(c domain.Coordinate, w *domain.WeatherSnapshot) (domain.PredictionResult, error) {
	near, err := h.reports.ReportsNear(context.Background(), c, lookupRadius)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	return h.engine.Predict(c, near, w, time.Time{})
}

func main() {
	reportsPath := flag.String("reports", "", "path to a JSONL report fixture")
	lat := flag.Float64("lat", 19.0760, "grid centre latitude")
	lon := flag.Float64("lon", 72.8777, "grid centre longitude")
	flag.Parse()

	if *reportsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*reportsPath, domain.Coordinate{Lat: *lat, Lon: *lon}))
}

func run(reportsPath string, center domain.Coordinate) int {
	fmt.Println("=== Water Risk Engine Validation ===")
	fmt.Println()

	parsing := &phase{name: "Fixture parsing"}
	reports, err := loadReports(reportsPath, parsing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	mem := store.NewMemory()
	if err := mem.LoadBatch(context.Background(), reports); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load store: %v\n", err)
		return 1
	}
	if mem.Len() != len(reports) {
		parsing.errorf("duplicate IDs: %d reports parsed, %d stored", len(reports), mem.Len())
	}

	h := harness{
		engine:  scoring.NewEngine(scoring.DefaultRegions(), clockwork.NewFakeClockAt(validationTime)),
		reports: mem,
	}
	grid := gridAround(center)

	phases := []*phase{
		parsing,
		validateBounds(h, grid),
		validateDeterminism(h, grid),
		validateRainSensitivity(h, grid),
		validatePrior(h, center),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Reports: %d, grid points: %d\n", len(reports), len(grid))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadReports(path string, p *phase) ([]domain.HistoricalReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reports []domain.HistoricalReport
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		r, err := domain.ParseRawReport(domain.RawEvent{Value: sc.Bytes(), Timestamp: validationTime})
		if err != nil {
			p.errorf("line %d: %v", line, err)
			continue
		}
		reports = append(reports, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports in %s", path)
	}
	return reports, nil
}

func gridAround(c domain.Coordinate) []domain.Coordinate {
	step := 2 * gridSpanDeg / (gridSteps - 1)
	out := make([]domain.Coordinate, 0, gridSteps*gridSteps)
	for i := range gridSteps {
		for j := range gridSteps {
			out = append(out, domain.Coordinate{
				Lat: c.Lat - gridSpanDeg + float64(i)*step,
				Lon: c.Lon - gridSpanDeg + float64(j)*step,
			})
		}
	}
	return out
}

// ── Phases ──

var weatherCases = []*domain.WeatherSnapshot{
	nil,
	{TemperatureC: 24, HumidityPct: 60, RainfallMm: 0},
	{TemperatureC: 33, HumidityPct: 92, RainfallMm: 65},
}

func validateBounds(h harness, grid []domain.Coordinate) *phase {
	p := &phase{name: "Score bounds and classification"}
	for _, c := range grid {
		for _, w := range weatherCases {
			res, err := h.predict(c, w)
			if err != nil {
				p.errorf("%v: %v", c, err)
				continue
			}
			if res.Score < 0 || res.Score > 100 {
				p.errorf("%v: score %.2f outside [0,100]", c, res.Score)
			}
			if res.Quality != scoring.ClassifyQuality(res.Score) {
				p.errorf("%v: quality %s does not match score %.2f", c, res.Quality, res.Score)
			}
			if res.Risk != scoring.ClassifyRisk(res.Score) {
				p.errorf("%v: risk %s does not match score %.2f", c, res.Risk, res.Score)
			}
			if res.Confidence < 50 || res.Confidence > 100 {
				p.errorf("%v: confidence %.1f outside [50,100]", c, res.Confidence)
			}
			if res.Trend.Forecast7Day < 0 || res.Trend.Forecast7Day > 100 ||
				res.Trend.Forecast30Day < 0 || res.Trend.Forecast30Day > 100 {
				p.errorf("%v: forecast outside [0,100]: %+v", c, res.Trend)
			}
			f := res.Factors
			if sum := math.Max(0, math.Min(100, f.Base+f.Weather+f.Seasonal+f.Proximity)); math.Abs(sum-res.Score) > 1e-9 {
				p.errorf("%v: factors sum to %.4f, score is %.4f", c, sum, res.Score)
			}
			if len(res.Recommendations) == 0 {
				p.errorf("%v: no recommendations", c)
			}
			for _, ct := range res.Contaminants {
				if ct.Probability < 0 || ct.Probability > 1 {
					p.errorf("%v: %s probability %.2f outside [0,1]", c, ct.Name, ct.Probability)
				}
			}
		}
	}
	return p
}

func validateDeterminism(h harness, grid []domain.Coordinate) *phase {
	p := &phase{name: "Determinism"}
	ignoreID := cmpopts.IgnoreFields(domain.PredictionResult{}, "ID")
	for _, c := range grid {
		a, errA := h.predict(c, weatherCases[2])
		b, errB := h.predict(c, weatherCases[2])
		if errA != nil || errB != nil {
			p.errorf("%v: %v / %v", c, errA, errB)
			continue
		}
		if diff := cmp.Diff(a, b, ignoreID); diff != "" {
			p.errorf("%v: repeated prediction differs (-first +second):\n%s", c, diff)
		}
	}
	return p
}

func validateRainSensitivity(h harness, grid []domain.Coordinate) *phase {
	p := &phase{name: "Rainfall never improves the score"}
	for _, c := range grid {
		prev := math.Inf(1)
		for _, mm := range []float64{0, 10, 25, 55, 120} {
			res, err := h.predict(c, &domain.WeatherSnapshot{TemperatureC: 25, HumidityPct: 50, RainfallMm: mm})
			if err != nil {
				p.errorf("%v: %v", c, err)
				break
			}
			if res.Score > prev {
				p.errorf("%v: score rose to %.2f at %.0f mm", c, res.Score, mm)
			}
			prev = res.Score
		}
	}
	return p
}

func validatePrior(h harness, center domain.Coordinate) *phase {
	p := &phase{name: "Prior without nearby evidence"}
	remote := domain.Coordinate{Lat: center.Lat + 1, Lon: center.Lon + 1}
	res, err := h.predict(remote, nil)
	if err != nil {
		p.errorf("%v: %v", remote, err)
		return p
	}
	if res.ReportCount != 0 {
		p.errorf("%v: expected no nearby reports, got %d", remote, res.ReportCount)
	}
	if res.Factors.Base != scoring.PriorScore {
		p.errorf("%v: base %.2f, want prior %.0f", remote, res.Factors.Base, scoring.PriorScore)
	}
	if res.Trend.Direction != domain.DirectionStable {
		p.errorf("%v: trend %s, want stable", remote, res.Trend.Direction)
	}
	return p
}
