package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/cities-weather/internal/api/http"
	"github.com/i474232898/cities-weather/internal/citylist"
	"github.com/i474232898/cities-weather/internal/config"
	"github.com/i474232898/cities-weather/internal/favorites"
	"github.com/i474232898/cities-weather/internal/geo"
	"github.com/i474232898/cities-weather/internal/logger"
	"github.com/i474232898/cities-weather/internal/metrics"
	"github.com/i474232898/cities-weather/internal/scheduler"
	"github.com/i474232898/cities-weather/internal/session"
	"github.com/i474232898/cities-weather/internal/upstream"
	"github.com/i474232898/cities-weather/internal/weather"
	"github.com/i474232898/cities-weather/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(fmt.Errorf("failed to load config: %w", err))
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector("cities_weather")

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	backoff := upstream.BackoffConfig{
		MaxRetries:      cfg.UpstreamMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}

	var limiter *rate.Limiter
	if cfg.OpenWeatherRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.OpenWeatherRPS), cfg.OpenWeatherBurst)
	}

	directory := geo.NewDirectoryClient(upstream.HTTPClientConfig{
		Name:    "citydirectory",
		Client:  httpClient,
		Backoff: backoff,
		Metrics: collector,
	}, cfg.CityDirectoryURL, cfg.CityDataset, cfg.PageSize)

	provider, err := providers.NewOpenWeatherProvider(upstream.HTTPClientConfig{
		Name:    "openweather",
		Client:  httpClient,
		Backoff: backoff,
		Limiter: limiter,
		Metrics: collector,
	}, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey)
	if err != nil {
		logger.Fatal(err)
	}

	// Reverse geocoding needs a Google API key; without it coordinates
	// are labelled generically.
	var namer weather.PlaceNamer
	if cfg.GeocoderAPIKey != "" {
		namer = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	weatherService := weather.NewService(provider, namer, cfg.PageLoadTimeout)

	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal(fmt.Errorf("failed to open %s store: %w", cfg.StorageDriver, err))
	}
	defer closeStore()
	favoritesService := favorites.NewService(kv, cfg.HistoryMaxEntries)

	registry := session.NewRegistry(func() *citylist.Aggregator {
		return citylist.New(directory, weatherService, citylist.Options{
			Concurrency: cfg.EnrichConcurrency,
			PageTimeout: cfg.PageLoadTimeout,
			Metrics:     collector,
		})
	}, cfg.SuggestDebounce, cfg.SessionTTL, collector)
	defer registry.CloseAll()

	// Scheduler that periodically drops idle sessions.
	sched := scheduler.New(registry, cfg.SessionSweepInterval)
	if err := sched.Start(); err != nil {
		logger.Fatal(fmt.Errorf("failed to start scheduler: %w", err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "cities-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.PageLoadTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "cities-weather",
			"sessions": registry.Len(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Services{
		Sessions:  registry,
		Weather:   weatherService,
		Favorites: favoritesService,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Warn(fmt.Sprintf("fiber server stopped: %v", err))
		}
	}()
	logger.Info("listening on :" + cfg.Port)

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error(fmt.Errorf("error during shutdown: %w", err))
	}
}

// openStore connects the favorites/history backend selected by
// STORAGE_DRIVER. The returned func releases it.
func openStore(ctx context.Context, cfg *config.AppConfig) (favorites.KV, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		kv, err := favorites.NewPostgresKV(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil

	case config.StorageMongo:
		kv, err := favorites.NewMongoKV(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {
			if err := kv.Close(); err != nil {
				logger.Error(err)
			}
		}, nil

	default:
		return favorites.NewMemoryKV(), func() {}, nil
	}
}
