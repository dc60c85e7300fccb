package search

import (
	"sort"

	"github.com/umahmood/haversine"

	"github.com/i474232898/cities-weather/internal/geo"
)

// Facets are the distinct filter values present in a collection.
type Facets struct {
	Countries []string `json:"countries"`
	Timezones []string `json:"timezones"`
}

// BuildFacets returns the sorted unique countries and timezones.
func BuildFacets(cities []geo.City) Facets {
	countries := map[string]struct{}{}
	zones := map[string]struct{}{}
	for _, c := range cities {
		countries[c.Country] = struct{}{}
		zones[c.Timezone] = struct{}{}
	}
	return Facets{Countries: sortedKeys(countries), Timezones: sortedKeys(zones)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ranked is a city with its great-circle distance from a reference point.
type Ranked struct {
	geo.City
	DistanceKm float64 `json:"distanceKm"`
}

// Nearest ranks cities that carry coordinates by distance from `from` and
// returns at most limit of them. Equal distances keep input order.
func Nearest(cities []geo.City, from geo.Coordinates, limit int) []Ranked {
	origin := haversine.Coord{Lat: from.Lat, Lon: from.Lon}

	ranked := make([]Ranked, 0, len(cities))
	for _, c := range cities {
		if c.Coordinates == nil {
			continue
		}
		_, km := haversine.Distance(origin, haversine.Coord{Lat: c.Coordinates.Lat, Lon: c.Coordinates.Lon})
		ranked = append(ranked, Ranked{City: c, DistanceKm: km})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
