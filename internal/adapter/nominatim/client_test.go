package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/observability"
)

const (
	testUserAgent     = "water-risk-test/1.0"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var mumbai = domain.Coordinate{Lat: 19.076, Lon: 72.8777}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(ClientConfig{
		BaseURL:   baseURL,
		UserAgent: testUserAgent,
		Zoom:      14,
		Timeout:   timeout,
	}, observability.NewMetricsForTesting(), discardLogger())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_ReverseGeocode_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "19.076", q.Get("lat"))
		assert.Equal(t, "72.8777", q.Get("lon"))
		assert.Equal(t, "14", q.Get("zoom"))
		assert.Equal(t, "1", q.Get("addressdetails"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		writeJSON(t, w, response{
			DisplayName: "Dharavi, Mumbai, Maharashtra, India",
			Address:     map[string]string{"suburb": "Dharavi", "city": "Mumbai"},
		})
	}))
	defer srv.Close()

	result, err := testClient(srv.URL, 5*time.Second).ReverseGeocode(context.Background(), mumbai)
	require.NoError(t, err)
	assert.Equal(t, "Dharavi", result.PlaceName)
	assert.Equal(t, "Dharavi, Mumbai, Maharashtra, India", result.DisplayName)
}

func TestResponse_Label(t *testing.T) {
	tests := []struct {
		name     string
		resp     response
		expected string
	}{
		{"suburb wins", response{Address: map[string]string{"city": "Mumbai", "suburb": "Bandra"}}, "Bandra"},
		{"neighbourhood before town", response{Address: map[string]string{"town": "T", "neighbourhood": "N"}}, "N"},
		{"quarter before village", response{Address: map[string]string{"village": "V", "quarter": "Q"}}, "Q"},
		{"city before county", response{Address: map[string]string{"county": "C", "city": "Pune"}}, "Pune"},
		{"state district last", response{Address: map[string]string{"state_district": "Konkan", "state": "MH"}}, "Konkan"},
		{"blank fields skipped", response{Address: map[string]string{"suburb": "  ", "village": "Alibag"}}, "Alibag"},
		{"display name first segment", response{DisplayName: "Marine Drive, Mumbai, India"}, "Marine Drive"},
		{"nothing usable", response{Address: map[string]string{"country": "India"}}, UnknownArea},
		{"empty body", response{}, UnknownArea},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resp.label())
		})
	}
}

func TestClient_ReverseGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<html>Access blocked</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).ReverseGeocode(context.Background(), mumbai)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestClient_ReverseGeocode_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"display_name":`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).ReverseGeocode(context.Background(), mumbai)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ReverseGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).ReverseGeocode(context.Background(), mumbai)
	require.Error(t, err)
}

func TestClient_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	for range 5 {
		_, err := c.ReverseGeocode(context.Background(), mumbai)
		require.Error(t, err)
	}

	_, err := c.ReverseGeocode(context.Background(), mumbai)
	require.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(5), hits.Load())
}

func TestNewClient_DefaultsTimeout(t *testing.T) {
	c := testClient("http://127.0.0.1:0", 0)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = testClient("http://127.0.0.1:0", 2*time.Second)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
}
