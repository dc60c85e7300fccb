package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/cities-weather/internal/logger"
)

// ErrMissingAPIKey is the configuration error raised when no weather
// provider credential is available. It is surfaced before any request.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is not set")

// Storage drivers for the favorites/history backend.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// City directory (opendatasoft geonames dataset).
	CityDirectoryURL string
	CityDataset      string
	PageSize         int

	// EnrichConcurrency caps in-flight weather lookups per page.
	EnrichConcurrency int

	HTTPTimeout        time.Duration
	PageLoadTimeout    time.Duration
	UpstreamMaxRetries int

	// OpenWeatherRPS of 0 disables client-side rate limiting.
	OpenWeatherRPS   float64
	OpenWeatherBurst int

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SuggestDebounce      time.Duration

	StorageDriver     string
	DatabaseURL       string
	MongoURI          string
	MongoDatabase     string
	HistoryMaxEntries int // 0 = unbounded

	GeocoderAPIKey string

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info(fmt.Sprintf("no .env file found or error loading it: %v", err))
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.OpenWeatherAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")

	cfg.CityDirectoryURL = getenvDefault("CITY_DIRECTORY_URL", "https://public.opendatasoft.com/api/records/1.0/search/")
	cfg.CityDataset = getenvDefault("CITY_DATASET", "geonames-all-cities-with-a-population-1000")
	cfg.PageSize = getenvInt("PAGE_SIZE", 100)
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("invalid PAGE_SIZE: %d", cfg.PageSize)
	}
	cfg.EnrichConcurrency = getenvInt("ENRICH_CONCURRENCY", 20)
	if cfg.EnrichConcurrency <= 0 {
		return nil, fmt.Errorf("invalid ENRICH_CONCURRENCY: %d", cfg.EnrichConcurrency)
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.PageLoadTimeout, err = getenvDuration("PAGE_LOAD_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", 0)

	rps := getenvDefault("OPENWEATHER_RPS", "0")
	cfg.OpenWeatherRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil || cfg.OpenWeatherRPS < 0 {
		return nil, fmt.Errorf("invalid OPENWEATHER_RPS: %q", rps)
	}
	cfg.OpenWeatherBurst = getenvInt("OPENWEATHER_BURST", 5)

	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = getenvDuration("SESSION_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	if cfg.SuggestDebounce, err = getenvDuration("SUGGEST_DEBOUNCE", "300ms"); err != nil {
		return nil, err
	}

	cfg.StorageDriver = strings.ToLower(getenvDefault("STORAGE_DRIVER", StorageMemory))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.MongoURI = os.Getenv("MONGO_URI")
	cfg.MongoDatabase = getenvDefault("MONGO_DATABASE", "cities_weather")
	cfg.HistoryMaxEntries = getenvInt("HISTORY_MAX_ENTRIES", 0)

	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER=postgres requires DATABASE_URL")
		}
	case StorageMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER=mongo requires MONGO_URI")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	raw := getenvDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
