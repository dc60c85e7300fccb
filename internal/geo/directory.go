// Package geo talks to the city directory (opendatasoft geonames dataset).
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cities-weather/internal/upstream"
)

// DefaultPageSize is the number of records requested per page.
const DefaultPageSize = 100

// FetchError reports a failed directory page fetch. StatusCode is 0 when
// the failure happened before a response was received.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("city directory: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("city directory: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Page is one page of directory records.
type Page struct {
	Records    []City
	IsLastPage bool
}

// DirectoryClient fetches fixed-size pages of cities ordered by name.
type DirectoryClient struct {
	baseURL  string
	dataset  string
	pageSize int
	httpCfg  upstream.HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewDirectoryClient builds a client for the given search endpoint.
func NewDirectoryClient(httpCfg upstream.HTTPClientConfig, baseURL, dataset string, pageSize int) *DirectoryClient {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if httpCfg.Name == "" {
		httpCfg.Name = "citydirectory"
	}
	return &DirectoryClient{
		baseURL:  baseURL,
		dataset:  dataset,
		pageSize: pageSize,
		httpCfg:  httpCfg,
		circuit:  upstream.NewCircuitBreaker(httpCfg.Name),
	}
}

// PageSize returns the number of records requested per page.
func (c *DirectoryClient) PageSize() int {
	return c.pageSize
}

type recordFields struct {
	Name        string    `json:"name"`
	Country     string    `json:"cou_name_en"`
	Timezone    string    `json:"timezone"`
	CountryCode string    `json:"country_code"`
	Population  int       `json:"population"`
	Coordinates []float64 `json:"coordinates"`
}

type searchResponse struct {
	Records []struct {
		Fields *recordFields `json:"fields"`
	} `json:"records"`
}

// FetchPage requests pageSize records starting at offset. Records missing
// a name, country or timezone are dropped. Every failure is a *FetchError.
func (c *DirectoryClient) FetchPage(ctx context.Context, offset int) (Page, error) {
	if offset < 0 {
		return Page{}, &FetchError{Err: fmt.Errorf("negative offset %d", offset)}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("dataset", c.dataset)
		values.Set("rows", strconv.Itoa(c.pageSize))
		values.Set("start", strconv.Itoa(offset))
		values.Set("sort", "name")

		return http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		fe := &FetchError{Err: err}
		var se *upstream.StatusError
		if errors.As(err, &se) {
			fe.StatusCode = se.Code
		}
		return Page{}, fe
	}
	defer resp.Body.Close()

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Page{}, &FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode records: %w", err)}
	}

	records := make([]City, 0, len(payload.Records))
	for _, rec := range payload.Records {
		if city, ok := toCity(rec.Fields); ok {
			records = append(records, city)
		}
	}

	return Page{
		Records: records,
		// Counted before cleaning on purpose: dropped partial records must
		// not end pagination while the directory still has rows.
		IsLastPage: len(payload.Records) < c.pageSize,
	}, nil
}

func toCity(f *recordFields) (City, bool) {
	if f == nil {
		return City{}, false
	}
	name := strings.TrimSpace(f.Name)
	country := strings.TrimSpace(f.Country)
	tz := strings.TrimSpace(f.Timezone)
	if name == "" || country == "" || tz == "" {
		return City{}, false
	}

	city := City{
		Name:        name,
		Country:     country,
		Timezone:    tz,
		CountryCode: f.CountryCode,
		Population:  f.Population,
	}
	// geonames stores coordinates as [lat, lon].
	if len(f.Coordinates) == 2 {
		city.Coordinates = &Coordinates{Lat: f.Coordinates[0], Lon: f.Coordinates[1]}
	}
	return city, true
}
