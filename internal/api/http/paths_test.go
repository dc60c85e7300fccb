package httpapi

import (
	"testing"

	"github.com/tj/assert"
)

func TestCityPathRoundTrip(t *testing.T) {
	names := []string{
		"Paris",
		"São Paulo",
		"Saint-Denis d'Aunis",
		"Washington, D.C.",
		"100% Town?",
		"a/b#c",
		"Ho Chi Minh City",
		"",
	}
	for _, name := range names {
		got, err := DecodeCityPath(CityPath(name))
		assert.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestCityPathEscapesSeparators(t *testing.T) {
	assert.Equal(t, "/weather/a%2Fb%23c", CityPath("a/b#c"))
	assert.Equal(t, "/weather/S%C3%A3o%20Paulo", CityPath("São Paulo"))
}

func TestDecodeCityPathRejectsBadEscape(t *testing.T) {
	_, err := DecodeCityPath("%zz")
	assert.Error(t, err)
}
