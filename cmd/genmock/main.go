// Command genmock writes reproducible synthetic report submissions as JSON
// lines, one submission per line, in the shape published on the reports
// topic. The output can be replayed onto Kafka or fed to cmd/validate.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -lat 19.0760 -lon 72.8777 -count 200 -radius 12 \
//	  -out data/mock/reports_mumbai.jsonl
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/scoring"
	"github.com/couchcryptid/water-risk-service/internal/synthetic"
)

// fixtureTime anchors report ages so output is byte-for-byte reproducible.
var fixtureTime = time.Date(2026, time.May, 1, 6, 0, 0, 0, time.UTC)

type submission struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Score      float64 `json:"quality_score"`
	Type       string  `json:"type"`
	ReportedAt string  `json:"reported_at"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 19.0760, "centre latitude")
	lon := flag.Float64("lon", 72.8777, "centre longitude")
	count := flag.Int("count", 200, "number of reports")
	radius := flag.Float64("radius", 12, "scatter radius in km")
	seed := flag.Uint64("seed", 42, "generator seed")
	out := flag.String("out", "", "output path for the JSONL fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	center := domain.Coordinate{Lat: *lat, Lon: *lon}
	if err := center.Validate(); err != nil {
		return err
	}
	if *count <= 0 || *radius <= 0 {
		return fmt.Errorf("-count and -radius must be positive")
	}

	gen := synthetic.NewGenerator(*seed, clockwork.NewFakeClockAt(fixtureTime))
	reports := gen.Reports(center, *count, *radius)

	if err := writeJSONL(*out, reports); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d reports to %s", len(reports), *out)

	printStats(reports)
	return nil
}

func writeJSONL(path string, reports []domain.HistoricalReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range reports {
		if err := enc.Encode(submission{
			ID:         r.ID,
			Lat:        r.Location.Lat,
			Lon:        r.Location.Lon,
			Score:      r.QualityScore,
			Type:       r.Type.String(),
			ReportedAt: r.ReportedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func printStats(reports []domain.HistoricalReport) {
	byType := map[domain.ReportType]int{}
	byQuality := map[domain.QualityLevel]int{}
	for _, r := range reports {
		byType[r.Type]++
		byQuality[scoring.ClassifyQuality(r.QualityScore)]++
	}

	fmt.Printf("Total: %d\n", len(reports))
	fmt.Printf("By type: community=%d, sensor=%d, official=%d\n",
		byType[domain.ReportCommunity], byType[domain.ReportSensor], byType[domain.ReportOfficial])
	fmt.Printf("By score band: safe=%d, moderate=%d, poor=%d, critical=%d\n",
		byQuality[domain.QualitySafe], byQuality[domain.QualityModerate],
		byQuality[domain.QualityPoor], byQuality[domain.QualityCritical])
}
