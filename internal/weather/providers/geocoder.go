package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/cities-weather/internal/geo"
)

var errNoAddress = errors.New("no address for coordinates")

// reverseFunc matches geocoder.GeocodingReverse; swapped in tests.
type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

// GoogleGeocoder labels coordinates with the city the Google Geocoding API
// resolves them to.
type GoogleGeocoder struct {
	reverse reverseFunc
}

var setKeyOnce sync.Once

// NewGoogleGeocoder configures the geocoder package with apiKey. The key is
// package-global in kelvins/geocoder, so only the first call takes effect.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	setKeyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return &GoogleGeocoder{reverse: geocoder.GeocodingReverse}
}

// PlaceName returns the city (or formatted address) at c.
func (g *GoogleGeocoder) PlaceName(ctx context.Context, c geo.Coordinates) (string, error) {
	type result struct {
		name string
		err  error
	}
	done := make(chan result, 1)

	// geocoder has no context support; abandon the lookup on cancellation.
	go func() {
		addrs, err := g.reverse(geocoder.Location{Latitude: c.Lat, Longitude: c.Lon})
		if err != nil {
			done <- result{err: err}
			return
		}
		for _, a := range addrs {
			if a.City != "" {
				done <- result{name: a.City}
				return
			}
		}
		if len(addrs) > 0 && addrs[0].FormattedAddress != "" {
			done <- result{name: addrs[0].FormattedAddress}
			return
		}
		done <- result{err: errNoAddress}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.name, r.err
	}
}
