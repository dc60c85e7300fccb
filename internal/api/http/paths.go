package httpapi

import (
	"net/url"
	"strings"
)

// CityPath is the front-end path of a city's detail view.
func CityPath(name string) string {
	return "/weather/" + url.PathEscape(name)
}

// DecodeCityPath reverses the escaping of CityPath for one path segment.
func DecodeCityPath(segment string) (string, error) {
	name, err := url.PathUnescape(strings.TrimPrefix(segment, "/weather/"))
	if err != nil {
		return "", err
	}
	return name, nil
}
