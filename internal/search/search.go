// Package search is the pure filter/sort/dedup pipeline over a city
// collection. Nothing here touches the network or mutates its input.
package search

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/i474232898/cities-weather/internal/geo"
)

var validTerm = regexp.MustCompile(`^[a-zA-Z\s-]*$`)

// ValidationError reports malformed user input.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateTerm accepts letters, whitespace and hyphens only.
func ValidateTerm(term string) error {
	if validTerm.MatchString(term) {
		return nil
	}
	return &ValidationError{
		Field:   "search",
		Value:   term,
		Message: "Please enter valid letters only.",
	}
}

// fold returns s case-folded. A Caser keeps state, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, sub string) bool {
	return strings.Contains(fold(s), fold(sub))
}

// Suggestions returns every city whose name contains query, ignoring case,
// in input order. An empty query suggests nothing.
func Suggestions(cities []geo.City, query string) []geo.City {
	if query == "" {
		return nil
	}
	q := fold(query)

	var out []geo.City
	for _, c := range cities {
		if strings.Contains(fold(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// Query holds the display filters. Empty fields do not filter.
type Query struct {
	Term     string
	Country  string
	Timezone string
}

// Filter keeps cities that satisfy every predicate of q.
func Filter(cities []geo.City, q Query) []geo.City {
	var out []geo.City
	for _, c := range cities {
		if matchesTerm(c, q.Term) && hasWeather(c) && matchesCountry(c, q.Country) && matchesTimezone(c, q.Timezone) {
			out = append(out, c)
		}
	}
	return out
}

func matchesTerm(c geo.City, term string) bool {
	return term == "" || containsFold(c.Name, term)
}

func hasWeather(c geo.City) bool {
	return c.Weather != nil && !math.IsNaN(c.Weather.High) && !math.IsNaN(c.Weather.Low)
}

func matchesCountry(c geo.City, country string) bool {
	return country == "" || c.Country == country
}

func matchesTimezone(c geo.City, tz string) bool {
	return tz == "" || c.Timezone == tz
}

// Dedup drops every city whose identity key was already seen. The first
// occurrence wins and relative order is kept.
func Dedup(cities []geo.City) []geo.City {
	seen := make(map[geo.Key]struct{}, len(cities))
	out := make([]geo.City, 0, len(cities))
	for _, c := range cities {
		k := c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Render runs filter, sort and dedup. An invalid term is left out of the
// filtering and its *ValidationError is returned with the result.
func Render(cities []geo.City, q Query, s SortState) ([]geo.City, error) {
	verr := ValidateTerm(q.Term)
	if verr != nil {
		q.Term = ""
	}
	out := Dedup(Sort(Filter(cities, q), s))
	return out, verr
}
