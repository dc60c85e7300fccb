package weather

import (
	"fmt"
	"strings"
)

// Units selects how temperatures and wind speed are presented.
type Units string

const (
	Metric   Units = "metric"   // Celsius, m/s
	Imperial Units = "imperial" // Fahrenheit, mph
)

// ParseUnits accepts "", "metric", "imperial" and the single letters c/f.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric", "c", "celsius":
		return Metric, nil
	case "imperial", "f", "fahrenheit":
		return Imperial, nil
	default:
		return "", fmt.Errorf("unknown units %q", s)
	}
}

// CelsiusToFahrenheit converts a temperature.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// MetersPerSecondToMPH converts a wind speed.
func MetersPerSecondToMPH(ms float64) float64 {
	return ms * 2.236936
}

// InUnits returns a copy of s expressed in u. s must be metric.
func (s Snapshot) InUnits(u Units) Snapshot {
	if u != Imperial {
		s.Units = Metric
		return s
	}
	s.TempCurrent = CelsiusToFahrenheit(s.TempCurrent)
	s.TempMax = CelsiusToFahrenheit(s.TempMax)
	s.TempMin = CelsiusToFahrenheit(s.TempMin)
	s.FeelsLike = CelsiusToFahrenheit(s.FeelsLike)
	s.WindSpeed = MetersPerSecondToMPH(s.WindSpeed)
	s.Units = Imperial
	return s
}

// InUnits returns a converted copy of the series. f must be metric.
func (f ForecastSeries) InUnits(u Units) ForecastSeries {
	out := make(ForecastSeries, len(f))
	copy(out, f)
	if u != Imperial {
		return out
	}
	for i := range out {
		out[i].TempAtTimestamp = CelsiusToFahrenheit(out[i].TempAtTimestamp)
	}
	return out
}
