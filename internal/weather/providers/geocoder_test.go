package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/tj/assert"

	"github.com/i474232898/cities-weather/internal/geo"
)

func TestPlaceName(t *testing.T) {
	cases := []struct {
		name    string
		addrs   []geocoder.Address
		err     error
		want    string
		wantErr bool
	}{
		{name: "city", addrs: []geocoder.Address{{City: ""}, {City: "Lyon"}}, want: "Lyon"},
		{name: "formatted fallback", addrs: []geocoder.Address{{FormattedAddress: "Somewhere, FR"}}, want: "Somewhere, FR"},
		{name: "empty", addrs: nil, wantErr: true},
		{name: "api error", err: errors.New("OVER_QUERY_LIMIT"), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got geocoder.Location
			g := &GoogleGeocoder{reverse: func(l geocoder.Location) ([]geocoder.Address, error) {
				got = l
				return tc.addrs, tc.err
			}}

			name, err := g.PlaceName(context.Background(), geo.Coordinates{Lat: 45.76, Lon: 4.83})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, name)
			assert.Equal(t, 45.76, got.Latitude)
			assert.Equal(t, 4.83, got.Longitude)
		})
	}
}

func TestPlaceNameHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	g := &GoogleGeocoder{reverse: func(geocoder.Location) ([]geocoder.Address, error) {
		<-release
		return nil, nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.PlaceName(ctx, geo.Coordinates{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
