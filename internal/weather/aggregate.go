package weather

import "time"

// DaySummary condenses all forecast steps of one UTC day.
type DaySummary struct {
	Date      time.Time `json:"date"` // midnight UTC
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Condition Condition `json:"condition"`
	Icon      string    `json:"icon,omitempty"`
}

// DailySummaries groups the series by UTC day and returns at most days
// summaries. High/low are the extremes of the day's steps; the condition is
// chosen by majority, first seen on a tie.
func (f ForecastSeries) DailySummaries(days int) []DaySummary {
	if days <= 0 || len(f) == 0 {
		return []DaySummary{}
	}

	var (
		out     []DaySummary
		current []ForecastEntry
		day     time.Time
	)

	flush := func() {
		if len(current) > 0 {
			out = append(out, summarizeDay(day, current))
		}
	}

	for _, e := range f {
		ts := e.Timestamp.UTC()
		d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		if !d.Equal(day) {
			flush()
			if len(out) == days {
				return out
			}
			day = d
			current = current[:0]
		}
		current = append(current, e)
	}
	flush()

	if len(out) > days {
		out = out[:days]
	}
	return out
}

func summarizeDay(day time.Time, entries []ForecastEntry) DaySummary {
	high := entries[0].TempAtTimestamp
	low := entries[0].TempAtTimestamp

	conditionCounts := make(map[Condition]int)
	var order []Condition
	icons := make(map[Condition]string)

	for _, e := range entries {
		if e.TempAtTimestamp > high {
			high = e.TempAtTimestamp
		}
		if e.TempAtTimestamp < low {
			low = e.TempAtTimestamp
		}

		if _, seen := conditionCounts[e.Condition]; !seen {
			order = append(order, e.Condition)
			icons[e.Condition] = e.ConditionIcon
		}
		conditionCounts[e.Condition]++
	}

	// Pick majority condition.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range order {
		if conditionCounts[cond] > bestCount {
			bestCount = conditionCounts[cond]
			bestCond = cond
		}
	}

	return DaySummary{
		Date:      day,
		High:      high,
		Low:       low,
		Condition: bestCond,
		Icon:      icons[bestCond],
	}
}
