package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidReport is returned when a report submission fails validation.
var ErrInvalidReport = errors.New("invalid report")

// HistoricalReport is a single point observation of water quality.
// Reports are owned by their source and are read-only to the engine.
type HistoricalReport struct {
	ID           string     `json:"id"`
	Location     Coordinate `json:"location"`
	QualityScore float64    `json:"quality_score"`
	ReportedAt   time.Time  `json:"reported_at"`
	Type         ReportType `json:"type"`
}

// Validate checks the report's coordinate, score range, and type.
func (r HistoricalReport) Validate() error {
	if err := r.Location.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	if r.QualityScore < 0 || r.QualityScore > 100 {
		return fmt.Errorf("%w: quality score %v outside [0,100]", ErrInvalidReport, r.QualityScore)
	}
	if r.Type < ReportCommunity || r.Type > ReportOfficial {
		return fmt.Errorf("%w: missing report type", ErrInvalidReport)
	}
	if r.ReportedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidReport)
	}
	return nil
}

// WeatherSnapshot is a point-in-time weather observation. A nil
// *WeatherSnapshot means no weather data is available.
type WeatherSnapshot struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	RainfallMm   float64 `json:"rainfall_mm"`
	Conditions   string  `json:"conditions,omitempty"`
}

// RainfallOrZero returns the rainfall of w, or 0 when w is nil.
func (w *WeatherSnapshot) RainfallOrZero() float64 {
	if w == nil {
		return 0
	}
	return w.RainfallMm
}

// reportSubmission is the JSON shape published by the reporting app.
type reportSubmission struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Score      float64 `json:"quality_score"`
	Type       string  `json:"type"`
	ReportedAt string  `json:"reported_at"`
}

// ParseRawReport deserializes a submission message into a validated
// HistoricalReport. When the submission omits a timestamp the message
// timestamp is used; when it omits an ID a deterministic one is derived.
func ParseRawReport(raw RawEvent) (HistoricalReport, error) {
	var sub reportSubmission
	if err := json.Unmarshal(raw.Value, &sub); err != nil {
		return HistoricalReport{}, fmt.Errorf("parse report: %w", err)
	}

	typ, err := ParseReportType(strings.ToLower(strings.TrimSpace(sub.Type)))
	if err != nil {
		return HistoricalReport{}, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	reportedAt := raw.Timestamp.UTC()
	if sub.ReportedAt != "" {
		reportedAt, err = time.Parse(time.RFC3339, sub.ReportedAt)
		if err != nil {
			return HistoricalReport{}, fmt.Errorf("%w: reported_at: %w", ErrInvalidReport, err)
		}
	}

	report := HistoricalReport{
		ID:           sub.ID,
		Location:     Coordinate{Lat: sub.Lat, Lon: sub.Lon},
		QualityScore: sub.Score,
		ReportedAt:   reportedAt,
		Type:         typ,
	}
	if report.ID == "" {
		report.ID = generateReportID(report)
	}
	if err := report.Validate(); err != nil {
		return HistoricalReport{}, err
	}
	return report, nil
}

// generateReportID produces a deterministic ID from the report's key fields so
// that replayed submissions deduplicate downstream.
func generateReportID(r HistoricalReport) string {
	input := fmt.Sprintf("%s|%.5f|%.5f|%s|%g", r.Type, r.Location.Lat, r.Location.Lon, r.ReportedAt.UTC().Format(time.RFC3339), r.QualityScore)
	hash := sha256.Sum256([]byte(input))
	return "rpt-" + hex.EncodeToString(hash[:8])
}
