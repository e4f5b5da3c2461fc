package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/water-risk-service/internal/adapter/http"
	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/observability"
	"github.com/couchcryptid/water-risk-service/internal/scoring"
	"github.com/couchcryptid/water-risk-service/internal/service"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubPlaces struct {
	calls int
}

func (s *stubPlaces) ResolvePlaceName(_ context.Context, c domain.Coordinate) string {
	s.calls++
	return fmt.Sprintf("Place near %.2f,%.2f", c.Lat, c.Lon)
}

type failingPredictor struct{}

func (failingPredictor) Predict(context.Context, service.Request) (domain.PredictionResult, error) {
	return domain.PredictionResult{}, errors.New("boom")
}

func (failingPredictor) ResolvePlace(_ context.Context, c domain.Coordinate) string {
	return domain.FallbackPlaceLabel(c)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPredictor(places domain.PlaceResolver) *service.Service {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))
	return service.New(service.Config{
		Engine:   scoring.NewEngine(scoring.DefaultRegions(), clock),
		Places:   places,
		RadiusKm: 10,
	}, observability.NewMetricsForTesting(), discardLogger())
}

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", newPredictor(nil), &mockReadiness{err: readyErr}, discardLogger())
}

func do(srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(newTestServer(nil), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(newTestServer(nil), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(newTestServer(fmt.Errorf("not ready yet")), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(newTestServer(nil), http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPredict_ReturnsResult(t *testing.T) {
	rec := do(newTestServer(nil), http.MethodPost, "/v1/predictions",
		`{"lat":19.0760,"lon":72.8777,"target_date":"2026-07-15","weather":{"temperature_c":29,"humidity_pct":88,"rainfall_mm":45}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["id"])
	assert.Contains(t, []any{"safe", "moderate", "poor", "critical"}, body["quality_level"])
	assert.NotContains(t, body, "place")

	factors, ok := body["factors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, scoring.SeasonalImpact(time.July), factors["seasonal"])
	assert.Equal(t, scoring.WeatherImpact(&domain.WeatherSnapshot{TemperatureC: 29, HumidityPct: 88, RainfallMm: 45}), factors["weather"])
}

func TestPredict_ZeroCoordinatesAreValid(t *testing.T) {
	rec := do(newTestServer(nil), http.MethodPost, "/v1/predictions", `{"lat":0,"lon":0}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPredict_IncludePlace(t *testing.T) {
	places := &stubPlaces{}
	srv := httpadapter.NewServer(":0", newPredictor(places), &mockReadiness{}, discardLogger())

	rec := do(srv, http.MethodPost, "/v1/predictions?include_place=true", `{"lat":19.0760,"lon":72.8777}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Place near 19.08,72.88", body["place"])
	assert.Equal(t, 1, places.calls)
}

func TestPredict_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed JSON", `{"lat":`, "invalid JSON"},
		{"unknown field", `{"lat":1,"lon":1,"depth":3}`, "invalid JSON"},
		{"missing lat", `{"lon":72.8}`, "lat: required"},
		{"latitude out of range", `{"lat":91,"lon":72.8}`, "lat: lte"},
		{"longitude out of range", `{"lat":19,"lon":-181}`, "lon: gte"},
		{"bad target date", `{"lat":19,"lon":72,"target_date":"15/07/2026"}`, "target_date: datetime"},
		{"negative rainfall", `{"lat":19,"lon":72,"weather":{"rainfall_mm":-1}}`, "rainfall_mm: gte"},
	}

	srv := newTestServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(srv, http.MethodPost, "/v1/predictions", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.wantMsg)
		})
	}
}

func TestPredict_InternalErrorIsOpaque(t *testing.T) {
	srv := httpadapter.NewServer(":0", failingPredictor{}, &mockReadiness{}, discardLogger())

	rec := do(srv, http.MethodPost, "/v1/predictions", `{"lat":19,"lon":72}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestPlaces(t *testing.T) {
	places := &stubPlaces{}
	srv := httpadapter.NewServer(":0", newPredictor(places), &mockReadiness{}, discardLogger())

	t.Run("resolves label", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/v1/places?lat=19.076&lon=72.8777", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Place near 19.08,72.88", body["label"])
	})

	t.Run("fallback without resolver", func(t *testing.T) {
		rec := do(newTestServer(nil), http.MethodGet, "/v1/places?lat=19.076&lon=72.8777", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Area 19.0760°N, 72.8777°E")
	})

	for _, target := range []string{
		"/v1/places?lon=72.8777",
		"/v1/places?lat=abc&lon=72.8777",
		"/v1/places?lat=95&lon=72.8777",
	} {
		t.Run("rejects "+target, func(t *testing.T) {
			rec := do(srv, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAllReady(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, httpadapter.AllReady().CheckReadiness(ctx))
	assert.NoError(t, httpadapter.AllReady(&mockReadiness{}, nil, &mockReadiness{}).CheckReadiness(ctx))

	err := httpadapter.AllReady(
		&mockReadiness{},
		&mockReadiness{err: errors.New("database unreachable")},
		&mockReadiness{err: errors.New("broker unreachable")},
	).CheckReadiness(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unreachable")
	assert.Contains(t, err.Error(), "broker unreachable")
}
