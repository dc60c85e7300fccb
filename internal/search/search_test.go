package search

import (
	"errors"
	"math"
	"testing"

	"github.com/tj/assert"

	"github.com/i474232898/cities-weather/internal/geo"
)

func city(name, country, tz string) geo.City {
	return geo.City{Name: name, Country: country, Timezone: tz}.WithWeather(geo.Temps{High: 20, Low: 10})
}

func names(cities []geo.City) []string {
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		out = append(out, c.Name+"/"+c.Country)
	}
	return out
}

func sample() []geo.City {
	return []geo.City{
		city("Paris", "France", "Europe/Paris"),
		city("berlin", "Germany", "Europe/Berlin"),
		city("Paris", "Canada", "America/Toronto"),
		city("Lyon", "France", "Europe/Paris"),
		{Name: "Parisot", Country: "France", Timezone: "Europe/Paris"},
		city("Montreal", "Canada", "America/Toronto"),
	}
}

func TestSuggestionsKeepInputOrder(t *testing.T) {
	got := Suggestions(sample(), "PARIS")
	assert.Equal(t, []string{"Paris/France", "Paris/Canada", "Parisot/France"}, names(got))
	assert.Empty(t, Suggestions(sample(), ""))
	assert.Empty(t, Suggestions(sample(), "zzz"))
}

func TestSearchParisReturnsBothCountries(t *testing.T) {
	got, err := Render(sample(), Query{Term: "paris"}, SortState{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Paris/France", "Paris/Canada"}, names(got))
}

func TestFilterDropsCitiesWithoutWeather(t *testing.T) {
	nan := geo.City{Name: "Nowhere", Country: "France", Timezone: "Europe/Paris"}.
		WithWeather(geo.Temps{High: math.NaN(), Low: 1})
	got := Filter(append(sample(), nan), Query{Country: "France"})
	assert.Equal(t, []string{"Paris/France", "Lyon/France"}, names(got))
}

func TestFilterIsConjunction(t *testing.T) {
	all := sample()
	q := Query{Term: "a", Country: "Canada", Timezone: "America/Toronto"}

	combined := Filter(all, q)

	byTerm := Filter(all, Query{Term: q.Term})
	byCountry := Filter(all, Query{Country: q.Country})
	byZone := Filter(all, Query{Timezone: q.Timezone})

	in := func(set []geo.City, c geo.City) bool {
		for _, s := range set {
			if s.Key() == c.Key() {
				return true
			}
		}
		return false
	}

	var intersection []geo.City
	for _, c := range all {
		if in(byTerm, c) && in(byCountry, c) && in(byZone, c) {
			intersection = append(intersection, c)
		}
	}
	assert.Equal(t, intersection, combined)
	assert.Equal(t, []string{"Paris/Canada", "Montreal/Canada"}, names(combined))
}

func TestValidateTerm(t *testing.T) {
	assert.NoError(t, ValidateTerm(""))
	assert.NoError(t, ValidateTerm("Saint-Denis"))
	assert.NoError(t, ValidateTerm("new york"))

	err := ValidateTerm("paris1")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "search", verr.Field)
	assert.Equal(t, "paris1", verr.Value)
}

func TestRenderIgnoresInvalidTerm(t *testing.T) {
	got, err := Render(sample(), Query{Term: "par%s"}, SortState{})

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	// Unfiltered by the term; the weather predicate still applies.
	assert.Len(t, got, 5)
}

func TestDedup(t *testing.T) {
	in := append(sample(), city("Paris", "France", "Europe/Paris"), city("Lyon", "France", "Europe/Paris"))
	in[len(in)-1].Population = 42

	once := Dedup(in)
	assert.Len(t, once, 6)
	assert.Equal(t, names(sample()), names(once))
	for _, c := range once {
		assert.Equal(t, 0, c.Population)
	}

	assert.Equal(t, once, Dedup(once))
}

func TestRenderDedupsAfterSort(t *testing.T) {
	in := []geo.City{
		city("Lyon", "France", "Europe/Paris"),
		city("annecy", "France", "Europe/Paris"),
		city("Lyon", "France", "Europe/Paris"),
	}
	got, err := Render(in, Query{}, SortState{Column: ColumnName, Order: Asc})
	assert.NoError(t, err)
	assert.Equal(t, []string{"annecy/France", "Lyon/France"}, names(got))
}
