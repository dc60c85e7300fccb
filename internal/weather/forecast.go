package weather

// Default sizes of the derived forecast views.
const (
	DefaultDailyDays   = 5
	DefaultHourlySteps = 12
	dailyHourUTC       = 12
)

// Daily returns one entry per day, the 12:00 UTC step, limited to days entries.
func (f ForecastSeries) Daily(days int) ForecastSeries {
	if days <= 0 {
		return ForecastSeries{}
	}
	out := make(ForecastSeries, 0, days)
	for _, e := range f {
		ts := e.Timestamp.UTC()
		if ts.Hour() != dailyHourUTC || ts.Minute() != 0 {
			continue
		}
		out = append(out, e)
		if len(out) == days {
			break
		}
	}
	return out
}

// Hourly returns the first steps entries.
func (f ForecastSeries) Hourly(steps int) ForecastSeries {
	if steps <= 0 {
		return ForecastSeries{}
	}
	if steps > len(f) {
		steps = len(f)
	}
	out := make(ForecastSeries, steps)
	copy(out, f[:steps])
	return out
}
