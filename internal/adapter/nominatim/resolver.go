package nominatim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/observability"
)

// DefaultMinInterval is the minimum spacing between outbound requests
// required by the public Nominatim usage policy.
const DefaultMinInterval = time.Second

// Resolver implements domain.PlaceResolver on top of a ReverseGeocoder. It
// caches labels by rounded coordinate and spaces outbound requests at least
// MinInterval apart across all callers.
type Resolver struct {
	geocoder domain.ReverseGeocoder
	cache    PlaceCache
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger

	// mu serializes pace, request, and stamp so concurrent misses cannot
	// both observe a stale limiter and fire together.
	mu      sync.Mutex
	limiter *rate.Limiter
}

// ResolverConfig configures a Resolver. Zero values select defaults.
type ResolverConfig struct {
	MinInterval time.Duration
	Clock       clockwork.Clock
}

// NewResolver creates a Resolver. A nil cache selects an unbounded MemoryCache.
func NewResolver(geocoder domain.ReverseGeocoder, cache PlaceCache, cfg ResolverConfig, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		clock:    cfg.Clock,
		metrics:  metrics,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
}

// ResolvePlaceName returns a label for c. It never fails: upstream errors and
// invalid coordinates yield FallbackPlaceLabel. Labels are cached, fallbacks
// included, except when ctx ends before the lookup completes.
func (r *Resolver) ResolvePlaceName(ctx context.Context, c domain.Coordinate) string {
	if err := c.Validate(); err != nil {
		r.logger.Debug("skipping place lookup", "error", err)
		return domain.FallbackPlaceLabel(c)
	}

	key := domain.PlaceKey(c)
	if label, ok := r.lookup(ctx, key); ok {
		r.metrics.PlaceCache.WithLabelValues("hit").Inc()
		return label
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have filled the key while we waited for the lock.
	if label, ok := r.lookup(ctx, key); ok {
		r.metrics.PlaceCache.WithLabelValues("hit").Inc()
		return label
	}
	r.metrics.PlaceCache.WithLabelValues("miss").Inc()

	if err := r.pace(ctx); err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("cancelled").Inc()
		return domain.FallbackPlaceLabel(c)
	}

	label := r.fetch(ctx, c, key)
	if label == "" {
		if ctx.Err() != nil {
			return domain.FallbackPlaceLabel(c)
		}
		label = domain.FallbackPlaceLabel(c)
	}

	if err := r.cache.Set(context.WithoutCancel(ctx), key, label); err != nil {
		r.logger.Warn("place cache write failed", "key", key, "error", err)
	}
	return label
}

// fetch calls the geocoder and returns "" on failure.
func (r *Resolver) fetch(ctx context.Context, c domain.Coordinate, key string) string {
	result, err := r.geocoder.ReverseGeocode(ctx, c)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("reverse geocoding failed, using fallback label", "key", key, "error", err)
		}
		return ""
	}
	return result.PlaceName
}

func (r *Resolver) lookup(ctx context.Context, key string) (string, bool) {
	label, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("place cache read failed", "key", key, "error", err)
		return "", false
	}
	return label, ok
}

// pace blocks until the limiter admits one request. The token is taken at
// the current clock time, which is the time the request is issued.
func (r *Resolver) pace(ctx context.Context) error {
	now := r.clock.Now()
	res := r.limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	r.metrics.GeocodePacingWait.Observe(delay.Seconds())
	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		res.CancelAt(r.clock.Now())
		return ctx.Err()
	case <-r.clock.After(delay):
		return nil
	}
}
