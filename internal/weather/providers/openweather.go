package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cities-weather/internal/common"
	"github.com/i474232898/cities-weather/internal/config"
	"github.com/i474232898/cities-weather/internal/geo"
	"github.com/i474232898/cities-weather/internal/upstream"
	"github.com/i474232898/cities-weather/internal/weather"
)

const (
	DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"
	iconURLFormat         = "https://openweathermap.org/img/wn/%s@2x.png"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg upstream.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider fails with config.ErrMissingAPIKey before any
// request is made when apiKey is empty.
func NewOpenWeatherProvider(httpCfg upstream.HTTPClientConfig, baseURL, apiKey string) (*OpenWeatherProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, config.ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	if httpCfg.Name == "" {
		httpCfg.Name = "openweather"
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: httpCfg,
		circuit: upstream.NewCircuitBreaker(httpCfg.Name),
	}, nil
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owCurrent struct {
	Dt    int64  `json:"dt"`
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []owCondition `json:"weather"`
}

type owForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []owCondition `json:"weather"`
	} `json:"list"`
}

// Current returns the current conditions for loc in metric units.
func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	var payload owCurrent
	if err := p.get(ctx, "weather", loc, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	cond := firstCondition(payload.Weather)
	place := payload.Name
	if place == "" {
		place = loc.Name
	}

	return weather.Snapshot{
		Place:         place,
		CountryCode:   payload.Sys.Country,
		ObservedAt:    ts,
		TempCurrent:   payload.Main.Temp,
		TempMax:       payload.Main.TempMax,
		TempMin:       payload.Main.TempMin,
		FeelsLike:     payload.Main.FeelsLike,
		HumidityPct:   payload.Main.Humidity,
		WindSpeed:     payload.Wind.Speed,
		ConditionMain: cond.Main,
		Description:   cond.Description,
		ConditionIcon: cond.Icon,
		IconURL:       iconURL(cond.Icon),
		Condition:     mapOpenWeatherCondition(cond),
		Coordinates:   geo.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		Units:         weather.Metric,
	}, nil
}

// Forecast returns the 5-day/3-hour forecast for loc in metric units.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, loc weather.Location) (weather.ForecastSeries, error) {
	var payload owForecast
	if err := p.get(ctx, "forecast", loc, &payload); err != nil {
		return nil, err
	}

	series := make(weather.ForecastSeries, 0, len(payload.List))
	for _, item := range payload.List {
		cond := firstCondition(item.Weather)
		series = append(series, weather.ForecastEntry{
			Timestamp:       time.Unix(item.Dt, 0).UTC(),
			TempAtTimestamp: item.Main.Temp,
			ConditionMain:   cond.Main,
			ConditionIcon:   cond.Icon,
			Description:     cond.Description,
			IconURL:         iconURL(cond.Icon),
			Condition:       mapOpenWeatherCondition(cond),
		})
	}
	return series, nil
}

// get calls <base>/<endpoint> and decodes the body into out. Every error
// wraps weather.ErrNotFound or weather.ErrUnavailable.
func (p *OpenWeatherProvider) get(ctx context.Context, endpoint string, loc weather.Location, out interface{}) error {
	if loc.Coordinates == nil && strings.TrimSpace(loc.Name) == "" {
		return fmt.Errorf("%w: empty location", weather.ErrNotFound)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		if loc.Coordinates != nil {
			values.Set("lat", strconv.FormatFloat(loc.Coordinates.Lat, 'f', -1, 64))
			values.Set("lon", strconv.FormatFloat(loc.Coordinates.Lon, 'f', -1, 64))
		} else {
			values.Set("q", loc.Name)
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := upstream.Do(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		if upstream.IsNotFound(err) {
			return fmt.Errorf("%w: %s %q", weather.ErrNotFound, endpoint, loc.Key())
		}
		return fmt.Errorf("%w: %s %q: %v", weather.ErrUnavailable, endpoint, loc.Key(), err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", weather.ErrUnavailable, endpoint, err)
	}
	return nil
}

func firstCondition(items []owCondition) owCondition {
	if len(items) == 0 {
		return owCondition{}
	}
	return items[0]
}

func iconURL(icon string) string {
	if icon == "" {
		return ""
	}
	return fmt.Sprintf(iconURLFormat, icon)
}

func mapOpenWeatherCondition(c owCondition) weather.Condition {
	switch c.Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand", "Ash":
		return weather.ConditionMist
	}

	// Squall, Tornado and unknown groups fall back to the description.
	switch {
	case common.HasAnyFold(c.Description, "thunder", "tornado", "squall"):
		return weather.ConditionStorm
	case common.HasAnyFold(c.Description, "snow", "sleet"):
		return weather.ConditionSnow
	case common.HasAnyFold(c.Description, "rain", "drizzle", "shower"):
		return weather.ConditionRain
	case common.HasAnyFold(c.Description, "cloud", "overcast"):
		return weather.ConditionCloudy
	default:
		return weather.ConditionUnknown
	}
}
