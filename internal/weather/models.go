package weather

import (
	"fmt"
	"time"

	"github.com/i474232898/cities-weather/internal/geo"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location addresses a weather lookup either by city name or by coordinates.
// Coordinates win when both are set.
type Location struct {
	Name        string           `json:"name,omitempty"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
}

// ByName returns a Location for a city name.
func ByName(name string) Location {
	return Location{Name: name}
}

// ByCoordinates returns a Location for a lat/lon pair.
func ByCoordinates(lat, lon float64) Location {
	return Location{Coordinates: &geo.Coordinates{Lat: lat, Lon: lon}}
}

// Key returns a canonical string key for logging this location.
func (l Location) Key() string {
	if l.Coordinates != nil {
		return fmt.Sprintf("%.4f,%.4f", l.Coordinates.Lat, l.Coordinates.Lon)
	}
	return l.Name
}

// Snapshot is the current conditions for a location at one point in time.
// Temperatures are Celsius and wind is m/s unless converted with InUnits.
type Snapshot struct {
	Place         string          `json:"place"`
	CountryCode   string          `json:"countryCode,omitempty"`
	ObservedAt    time.Time       `json:"observedAt"` // always UTC
	TempCurrent   float64         `json:"tempCurrent"`
	TempMax       float64         `json:"tempMax"`
	TempMin       float64         `json:"tempMin"`
	FeelsLike     float64         `json:"feelsLike"`
	HumidityPct   float64         `json:"humidityPct"`
	WindSpeed     float64         `json:"windSpeed"`
	ConditionMain string          `json:"conditionMain"`
	Description   string          `json:"description,omitempty"`
	ConditionIcon string          `json:"conditionIcon"`
	IconURL       string          `json:"iconUrl,omitempty"`
	Condition     Condition       `json:"condition"`
	Coordinates   geo.Coordinates `json:"coordinates"`
	Units         Units           `json:"units"`
}

// ForecastEntry is one 3-hour step of the upstream forecast.
type ForecastEntry struct {
	Timestamp       time.Time `json:"timestamp"` // always UTC
	TempAtTimestamp float64   `json:"temp"`
	ConditionMain   string    `json:"conditionMain"`
	ConditionIcon   string    `json:"conditionIcon"`
	Description     string    `json:"description,omitempty"`
	IconURL         string    `json:"iconUrl,omitempty"`
	Condition       Condition `json:"condition"`
}

// ForecastSeries is the upstream forecast in ascending timestamp order.
type ForecastSeries []ForecastEntry
