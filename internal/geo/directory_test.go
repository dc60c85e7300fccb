package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tj/assert"

	"github.com/i474232898/cities-weather/internal/upstream"
)

func newTestDirectory(t *testing.T, handler http.HandlerFunc, pageSize int) *DirectoryClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewDirectoryClient(upstream.HTTPClientConfig{Client: srv.Client()}, srv.URL, "geonames", pageSize)
}

func recordsJSON(n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf(
			`{"fields":{"name":"City %03d","cou_name_en":"Country","timezone":"Europe/Paris","coordinates":[48.85,2.35]}}`, i))
	}
	return `{"records":[` + strings.Join(parts, ",") + `]}`
}

func TestFetchPageQuery(t *testing.T) {
	var got *http.Request
	client := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(recordsJSON(3)))
	}, 100)

	page, err := client.FetchPage(context.Background(), 200)
	assert.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "geonames", q.Get("dataset"))
	assert.Equal(t, "100", q.Get("rows"))
	assert.Equal(t, "200", q.Get("start"))
	assert.Equal(t, "name", q.Get("sort"))

	assert.Len(t, page.Records, 3)
	assert.True(t, page.IsLastPage)
	assert.Equal(t, &Coordinates{Lat: 48.85, Lon: 2.35}, page.Records[0].Coordinates)
}

func TestFetchPageFullPageIsNotLast(t *testing.T) {
	client := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(recordsJSON(5)))
	}, 5)

	page, err := client.FetchPage(context.Background(), 0)
	assert.NoError(t, err)
	assert.Len(t, page.Records, 5)
	assert.False(t, page.IsLastPage)
}

func TestFetchPageDropsPartialRecords(t *testing.T) {
	body := `{"records":[
		{"fields":{"name":"Paris","cou_name_en":"France","timezone":"Europe/Paris"}},
		{"fields":{"name":"","cou_name_en":"France","timezone":"Europe/Paris"}},
		{"fields":{"name":"Lyon","timezone":"Europe/Paris"}},
		{"fields":{"name":"Nice","cou_name_en":"France"}},
		{}
	]}`
	client := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}, 100)

	page, err := client.FetchPage(context.Background(), 0)
	assert.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.Equal(t, "Paris", page.Records[0].Name)
	assert.Nil(t, page.Records[0].Weather)
}

func TestFetchPageCountsRawRecordsForLastPage(t *testing.T) {
	body := `{"records":[
		{"fields":{"name":"Paris","cou_name_en":"France","timezone":"Europe/Paris"}},
		{"fields":{"name":"","cou_name_en":"France","timezone":"Europe/Paris"}}
	]}`
	client := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}, 2)

	page, err := client.FetchPage(context.Background(), 0)
	assert.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.False(t, page.IsLastPage)
}

func TestFetchPageRejectsNegativeOffset(t *testing.T) {
	client := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}, 100)

	_, err := client.FetchPage(context.Background(), -100)
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestFetchPageErrors(t *testing.T) {
	cases := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"records":[`))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestDirectory(t, tc.handler, 100)

			_, err := client.FetchPage(context.Background(), 0)
			var fe *FetchError
			assert.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.wantStatus, fe.StatusCode)
		})
	}
}

func TestFetchPageNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewDirectoryClient(upstream.HTTPClientConfig{Client: http.DefaultClient}, url, "geonames", 100)
	_, err := client.FetchPage(context.Background(), 0)

	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.StatusCode)
}
