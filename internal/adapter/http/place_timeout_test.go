package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/service"
)

// queuedPredictor blocks place lookups until the caller's context ends, the
// way a resolver does while waiting behind geocoder pacing.
type queuedPredictor struct {
	deadline time.Time
	bounded  bool
}

func (q *queuedPredictor) Predict(context.Context, service.Request) (domain.PredictionResult, error) {
	return domain.PredictionResult{}, nil
}

func (q *queuedPredictor) ResolvePlace(ctx context.Context, c domain.Coordinate) string {
	q.deadline, q.bounded = ctx.Deadline()
	<-ctx.Done()
	return domain.FallbackPlaceLabel(c)
}

type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func TestPlaceLookupTimeoutBelowWriteTimeout(t *testing.T) {
	assert.Less(t, placeLookupTimeout, writeTimeout)

	srv := NewServer(":0", &queuedPredictor{}, alwaysReady{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, writeTimeout, srv.httpServer.WriteTimeout)
	assert.Equal(t, placeLookupTimeout, srv.placeTimeout)
}

func TestHandlePlace_QueuedLookupGetsFallback(t *testing.T) {
	pred := &queuedPredictor{}
	srv := NewServer(":0", pred, alwaysReady{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv.placeTimeout = 20 * time.Millisecond

	start := time.Now()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/places?lat=38.5&lon=-121.7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, pred.bounded, "lookup context must carry a deadline")
	assert.WithinDuration(t, start.Add(20*time.Millisecond), pred.deadline, time.Second)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.FallbackPlaceLabel(domain.Coordinate{Lat: 38.5, Lon: -121.7}), body["label"])
}

func TestHandlePredict_IncludePlaceIsBounded(t *testing.T) {
	pred := &queuedPredictor{}
	srv := NewServer(":0", pred, alwaysReady{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv.placeTimeout = 20 * time.Millisecond

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/predictions?include_place=true",
		strings.NewReader(`{"lat":38.5,"lon":-121.7}`)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, pred.bounded, "lookup context must carry a deadline")
}
