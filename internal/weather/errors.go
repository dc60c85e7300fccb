package weather

import "errors"

var (
	// ErrNotFound means the upstream confirmed there is no such place.
	ErrNotFound = errors.New("location not found")
	// ErrUnavailable covers network failures, 5xx responses, an open
	// circuit and malformed bodies.
	ErrUnavailable = errors.New("weather provider unavailable")
)
