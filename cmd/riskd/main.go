package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/water-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/water-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/water-risk-service/internal/adapter/nominatim"
	"github.com/couchcryptid/water-risk-service/internal/adapter/postgres"
	"github.com/couchcryptid/water-risk-service/internal/config"
	"github.com/couchcryptid/water-risk-service/internal/domain"
	"github.com/couchcryptid/water-risk-service/internal/observability"
	"github.com/couchcryptid/water-risk-service/internal/pipeline"
	"github.com/couchcryptid/water-risk-service/internal/scheduler"
	"github.com/couchcryptid/water-risk-service/internal/scoring"
	"github.com/couchcryptid/water-risk-service/internal/service"
	"github.com/couchcryptid/water-risk-service/internal/store"
	"github.com/couchcryptid/water-risk-service/internal/synthetic"
)

// seedRadiusKm bounds synthetic seed reports around each urban region centre.
const seedRadiusKm = 15

// reportStore is the storage surface shared by the memory store and Postgres.
type reportStore interface {
	service.ReportSource
	pipeline.BatchLoader
	scheduler.Pruner
}

func main() {
	if err := run(); err != nil {
		slog.Error("riskd exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	regions, err := scoring.LoadRegions(cfg.RegionsFile)
	if err != nil {
		return err
	}
	engine := scoring.NewEngine(regions, clock)
	gen := synthetic.NewGenerator(uint64(clock.Now().UnixNano()), clock)

	var readiness []sharedobs.ReadinessChecker

	reports, closeStore, err := openReportStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open report store: %w", err)
	}
	defer closeStore()
	if checker, ok := reports.(sharedobs.ReadinessChecker); ok {
		readiness = append(readiness, checker)
	}

	if cfg.SeedSyntheticReports > 0 {
		seedReports(ctx, reports, gen, regions, cfg.SeedSyntheticReports, logger)
	}

	sweep := scheduler.NewRetentionSweep(reports, cfg.ReportRetention, cfg.ReportRetentionSweep, clock, metrics, logger)
	if err := sweep.Start(); err != nil {
		return err
	}
	defer sweep.Stop()

	places, closePlaces := newPlaceResolver(cfg, clock, metrics, logger)
	defer closePlaces()

	var weather service.WeatherSource = service.NoWeather{}
	if cfg.WeatherSource == config.WeatherSourceSynthetic {
		weather = gen
	}

	var publisher service.Publisher
	if cfg.KafkaPredictionsTopic != "" {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("prediction publishing enabled", "topic", cfg.KafkaPredictionsTopic)
	}

	svc := service.New(service.Config{
		Engine:   engine,
		Reports:  reports,
		Weather:  weather,
		Publish:  publisher,
		Places:   places,
		RadiusKm: cfg.ReportLookupRadiusKm,
	}, metrics, logger)

	var reader *kafkaadapter.Reader
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(logger), reports, logger, metrics, cfg.BatchSize)
		readiness = append(readiness, reader, p)

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka ingestion disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, httpadapter.AllReady(readiness...), logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

func openReportStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (reportStore, func(), error) {
	if cfg.ReportSource != config.ReportSourcePostgres {
		logger.Info("using in-memory report store")
		return store.NewMemory(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	pool, err := postgres.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	repo := postgres.NewRepository(pool)
	if err := repo.Migrate(connectCtx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("using postgres report store")
	return repo, pool.Close, nil
}

func seedReports(ctx context.Context, reports pipeline.BatchLoader, gen *synthetic.Generator, regions scoring.Regions, n int, logger *slog.Logger) {
	if len(regions.Urban) == 0 {
		logger.Warn("no urban regions to seed synthetic reports around")
		return
	}
	for _, r := range regions.Urban {
		center := domain.Coordinate{
			Lat: (r.MinLat + r.MaxLat) / 2,
			Lon: (r.MinLon + r.MaxLon) / 2,
		}
		if err := reports.LoadBatch(ctx, gen.Reports(center, n, seedRadiusKm)); err != nil {
			logger.Warn("seeding synthetic reports failed", "region", r.Name, "error", err)
			continue
		}
		logger.Info("seeded synthetic reports", "region", r.Name, "count", n)
	}
}

func newPlaceResolver(cfg *config.Config, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) (domain.PlaceResolver, func()) {
	if !cfg.GeocoderEnabled {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("reverse geocoding disabled")
		return nil, func() {}
	}
	metrics.GeocodeEnabled.Set(1)

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   cfg.NominatimURL,
		UserAgent: cfg.GeocoderUserAgent,
		Zoom:      cfg.GeocoderZoom,
		Timeout:   cfg.GeocoderTimeout,
	}, metrics, logger)

	var (
		cache   nominatim.PlaceCache
		closeFn = func() {}
	)
	switch cfg.PlaceCacheBackend {
	case config.PlaceCacheMemcached:
		mc := nominatim.NewMemcachedCache(cfg.MemcachedAddrs, 0)
		if err := mc.Ping(); err != nil {
			logger.Warn("memcached unreachable, place lookups will miss the cache until it recovers", "error", err)
		}
		cache = mc
		closeFn = func() {
			if err := mc.Close(); err != nil {
				logger.Error("memcached close error", "error", err)
			}
		}
	default:
		cache = nominatim.NewMemoryCache(cfg.PlaceCacheMaxEntries)
	}

	logger.Info("reverse geocoding enabled",
		"url", cfg.NominatimURL,
		"cache", cfg.PlaceCacheBackend,
		"min_interval", cfg.GeocoderMinInterval,
	)
	return nominatim.NewResolver(client, cache, nominatim.ResolverConfig{
		MinInterval: cfg.GeocoderMinInterval,
		Clock:       clock,
	}, metrics, logger), closeFn
}
