package geo

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Temps is the high/low attached to a city by enrichment, in Celsius.
type Temps struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// City is one record of the city directory.
// Weather is nil until enrichment succeeds and stays nil if it fails.
type City struct {
	Name        string       `json:"name"`
	Country     string       `json:"country"`
	Timezone    string       `json:"timezone"`
	CountryCode string       `json:"countryCode,omitempty"`
	Population  int          `json:"population,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Weather     *Temps       `json:"weather,omitempty"`
}

// Key identifies a city. Name alone is not unique across countries.
type Key struct {
	Name     string
	Country  string
	Timezone string
}

// Key returns the identity key of the city.
func (c City) Key() Key {
	return Key{Name: c.Name, Country: c.Country, Timezone: c.Timezone}
}

// WithWeather returns a copy of c carrying t.
func (c City) WithWeather(t Temps) City {
	c.Weather = &t
	return c
}
