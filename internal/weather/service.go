package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/cities-weather/internal/geo"
	"github.com/i474232898/cities-weather/internal/logger"
)

// Provider abstracts the weather data source (OpenWeatherMap). Name is
// shown as the attribution of the detail view.
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (Snapshot, error)
	Forecast(ctx context.Context, loc Location) (ForecastSeries, error)
}

// PlaceNamer turns coordinates into a human readable place name.
type PlaceNamer interface {
	PlaceName(ctx context.Context, c geo.Coordinates) (string, error)
}

// MyLocationLabel names coordinate lookups when no PlaceNamer resolves them.
const MyLocationLabel = "Your Location"

// Detail is everything the city detail view shows.
type Detail struct {
	Place     string          `json:"place"`
	Source    string          `json:"source"`
	Units     Units           `json:"units"`
	Current   Snapshot        `json:"current"`
	Daily     ForecastSeries  `json:"daily"`
	Hourly    ForecastSeries  `json:"hourly"`
	Summaries []DaySummary    `json:"summaries"`
	Map       geo.Coordinates `json:"map"`
}

// Service composes current conditions and forecast for the detail view.
type Service struct {
	provider Provider
	namer    PlaceNamer
	timeout  time.Duration
}

// NewService creates a new Service. namer may be nil.
func NewService(provider Provider, namer PlaceNamer, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		provider: provider,
		namer:    namer,
		timeout:  timeout,
	}
}

// Current delegates a single current-conditions lookup to the provider.
func (s *Service) Current(ctx context.Context, loc Location) (Snapshot, error) {
	return s.provider.Current(ctx, loc)
}

// Detail fetches current conditions and forecast concurrently. Either
// failing fails the whole detail; there is no partial page.
func (s *Service) Detail(ctx context.Context, loc Location, units Units) (Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		current  Snapshot
		forecast ForecastSeries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.provider.Current(gctx, loc)
		if err != nil {
			return fmt.Errorf("current conditions for %s: %w", loc.Key(), err)
		}
		current = snap
		return nil
	})
	g.Go(func() error {
		series, err := s.provider.Forecast(gctx, loc)
		if err != nil {
			return fmt.Errorf("forecast for %s: %w", loc.Key(), err)
		}
		forecast = series
		return nil
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	place := loc.Name
	if loc.Coordinates != nil {
		place = s.placeName(ctx, *loc.Coordinates)
	}

	summaries := forecast.DailySummaries(DefaultDailyDays)
	if units == Imperial {
		for i := range summaries {
			summaries[i].High = CelsiusToFahrenheit(summaries[i].High)
			summaries[i].Low = CelsiusToFahrenheit(summaries[i].Low)
		}
	} else {
		units = Metric
	}

	return Detail{
		Place:     place,
		Source:    s.provider.Name(),
		Units:     units,
		Current:   current.InUnits(units),
		Daily:     forecast.Daily(DefaultDailyDays).InUnits(units),
		Hourly:    forecast.Hourly(DefaultHourlySteps).InUnits(units),
		Summaries: summaries,
		Map:       current.Coordinates,
	}, nil
}

func (s *Service) placeName(ctx context.Context, c geo.Coordinates) string {
	if s.namer == nil {
		return MyLocationLabel
	}
	name, err := s.namer.PlaceName(ctx, c)
	if err != nil || name == "" {
		if err != nil {
			logger.WithFields(logrus.Fields{
				"lat":   c.Lat,
				"lon":   c.Lon,
				"error": err.Error(),
			}).Warn("reverse geocoding failed")
		}
		return MyLocationLabel
	}
	return name
}
