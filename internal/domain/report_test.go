package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawReport(t *testing.T) {
	msgTime := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("full submission", func(t *testing.T) {
		data := []byte(`{"id":"rpt-1","lat":19.076,"lon":72.8777,"quality_score":82,"type":"community","reported_at":"2026-04-30T08:00:00Z"}`)
		report, err := ParseRawReport(RawEvent{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, "rpt-1", report.ID)
		assert.Equal(t, Coordinate{Lat: 19.076, Lon: 72.8777}, report.Location)
		assert.Equal(t, 82.0, report.QualityScore)
		assert.Equal(t, ReportCommunity, report.Type)
		assert.Equal(t, time.Date(2026, 4, 30, 8, 0, 0, 0, time.UTC), report.ReportedAt)
	})

	t.Run("timestamp from message", func(t *testing.T) {
		data := []byte(`{"lat":19.076,"lon":72.8777,"quality_score":40,"type":"Sensor"}`)
		report, err := ParseRawReport(RawEvent{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, msgTime, report.ReportedAt)
		assert.Equal(t, ReportSensor, report.Type)
		assert.True(t, strings.HasPrefix(report.ID, "rpt-"))
	})

	t.Run("deterministic ID", func(t *testing.T) {
		data := []byte(`{"lat":19.076,"lon":72.8777,"quality_score":40,"type":"official"}`)
		r1, err := ParseRawReport(RawEvent{Value: data, Timestamp: msgTime})
		require.NoError(t, err)
		r2, err := ParseRawReport(RawEvent{Value: data, Timestamp: msgTime})
		require.NoError(t, err)
		assert.Equal(t, r1.ID, r2.ID)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawReport(RawEvent{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse report")
	})

	rejects := []struct {
		name string
		body string
	}{
		{"unknown type", `{"lat":1,"lon":1,"quality_score":50,"type":"rumour"}`},
		{"score above range", `{"lat":1,"lon":1,"quality_score":101,"type":"community"}`},
		{"negative score", `{"lat":1,"lon":1,"quality_score":-1,"type":"community"}`},
		{"latitude out of range", `{"lat":95,"lon":1,"quality_score":50,"type":"community"}`},
		{"bad timestamp", `{"lat":1,"lon":1,"quality_score":50,"type":"community","reported_at":"yesterday"}`},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRawReport(RawEvent{Value: []byte(tt.body), Timestamp: msgTime})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidReport)
		})
	}

	t.Run("missing timestamp everywhere", func(t *testing.T) {
		_, err := ParseRawReport(RawEvent{Value: []byte(`{"lat":1,"lon":1,"quality_score":50,"type":"community"}`)})
		assert.ErrorIs(t, err, ErrInvalidReport)
	})
}

func TestWeatherSnapshot_RainfallOrZero(t *testing.T) {
	var none *WeatherSnapshot
	assert.Equal(t, 0.0, none.RainfallOrZero())
	assert.Equal(t, 12.5, (&WeatherSnapshot{RainfallMm: 12.5}).RainfallOrZero())
}

func TestEnums_JSONLabels(t *testing.T) {
	result := PredictionResult{
		Quality: QualityModerate,
		Risk:    RiskMedium,
		Trend:   Trend{Direction: DirectionDeclining},
		Contaminants: []ContaminantFinding{
			{Name: "Heavy Metals", Category: CategoryChemical, Severity: SeverityMedium},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"quality_level":"moderate"`)
	assert.Contains(t, s, `"risk_level":"medium"`)
	assert.Contains(t, s, `"direction":"declining"`)
	assert.Contains(t, s, `"category":"Chemical"`)
	assert.Contains(t, s, `"severity":"medium"`)
}

func TestEnums_RejectUnknownLabels(t *testing.T) {
	var q QualityLevel
	assert.Error(t, q.UnmarshalText([]byte("excellent")))

	var r RiskLevel
	assert.Error(t, r.UnmarshalText([]byte("none")))

	var d Direction
	assert.Error(t, d.UnmarshalText([]byte("sideways")))

	var typ ReportType
	assert.Error(t, typ.UnmarshalText([]byte("")))
}

func TestEnums_ZeroValueDoesNotMarshal(t *testing.T) {
	_, err := json.Marshal(struct {
		Q QualityLevel `json:"q"`
	}{})
	assert.Error(t, err)
}
