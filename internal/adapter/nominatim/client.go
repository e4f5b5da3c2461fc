package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/observability"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// DefaultTimeout bounds a single reverse lookup when ClientConfig.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// UnknownArea is the label used when a response carries no usable name.
const UnknownArea = "Unknown Area"

// labelFields lists address fields from most to least specific.
var labelFields = []string{
	"suburb",
	"neighbourhood",
	"quarter",
	"hamlet",
	"village",
	"town",
	"city",
	"county",
	"state_district",
}

var errCircuitOpen = errors.New("nominatim circuit open")

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Zoom      int
	Timeout   time.Duration
}

// Client implements domain.ReverseGeocoder using the Nominatim reverse API.
type Client struct {
	baseURL    string
	userAgent  string
	zoom       int
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim reverse-geocoding client. Consecutive
// failures open a circuit breaker so that a dead upstream fails fast.
func NewClient(cfg ClientConfig, metrics *observability.Metrics, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		zoom:       cfg.Zoom,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker(logger),
		metrics:    metrics,
		logger:     logger,
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation does not count against the upstream.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// ReverseGeocode looks up the place containing c and returns its label.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.GeocodingResult, error) {
	params := url.Values{
		"format":         {"json"},
		"lat":            {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"zoom":           {strconv.Itoa(c.zoom)},
		"addressdetails": {"1"},
	}
	fullURL := c.baseURL + "/reverse?" + params.Encode()

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, fullURL)
	})
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		c.metrics.GeocodeRequests.WithLabelValues(outcomeFor(ctx)).Inc()
		return domain.GeocodingResult{}, err
	}

	resp := out.(response)
	result := domain.GeocodingResult{
		DisplayName: resp.DisplayName,
		PlaceName:   resp.label(),
	}
	if result.PlaceName == UnknownArea {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	} else {
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return response{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func outcomeFor(ctx context.Context) string {
	if ctx.Err() != nil {
		return "cancelled"
	}
	return "error"
}

// Nominatim API response types.

type response struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// label picks the most specific address field, then the first segment of
// the display name.
func (r response) label() string {
	for _, field := range labelFields {
		if v := strings.TrimSpace(r.Address[field]); v != "" {
			return v
		}
	}
	if r.DisplayName != "" {
		first, _, _ := strings.Cut(r.DisplayName, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return UnknownArea
}
