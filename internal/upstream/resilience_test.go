package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tj/assert"
)

func newConfig(srv *httptest.Server, retries int) HTTPClientConfig {
	return HTTPClientConfig{
		Name:   "test",
		Client: srv.Client(),
		Backoff: BackoffConfig{
			MaxRetries:      retries,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

func getter(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := Do(context.Background(), newConfig(srv, 0), NewCircuitBreaker("t"), getter(srv.URL))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoNotFoundIsClassifiedAndNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Do(context.Background(), newConfig(srv, 3), NewCircuitBreaker("t"), getter(srv.URL))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cb := NewCircuitBreaker("t")
	for i := 0; i < 20; i++ {
		_, err := Do(context.Background(), newConfig(srv, 0), cb, getter(srv.URL))
		assert.True(t, IsNotFound(err))
	}
	_, err := Do(context.Background(), newConfig(srv, 0), cb, getter(srv.URL))
	assert.False(t, errors.Is(err, ErrCircuitOpen))
}

func TestDoNoRetryByDefault(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Do(context.Background(), newConfig(srv, 0), NewCircuitBreaker("t"), getter(srv.URL))
	var se *StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := Do(context.Background(), newConfig(srv, 3), NewCircuitBreaker("t"), getter(srv.URL))
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoRequiresClient(t *testing.T) {
	_, err := Do(context.Background(), HTTPClientConfig{}, NewCircuitBreaker("t"), getter("http://x"))
	assert.Equal(t, errNoHTTPClient, err)
}
