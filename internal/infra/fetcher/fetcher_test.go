package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webcrawler/internal/domain/crawlerr"
	"webcrawler/internal/infra/fetcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T) *fetcher.Fetcher {
	t.Helper()
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false // httptest servers listen on 127.0.0.1
	cfg.CrawlDelay = 0
	f, err := fetcher.New(cfg)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	res, err := f.Fetch(context.Background(), server.URL+"/page", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Text, "hello")
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), server.URL+"/private/page", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, crawlerr.ErrRobotsDisallowed)
}

func TestFetch_SurfacesOrdinaryHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("forbidden"))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	res, err := f.Fetch(context.Background(), server.URL+"/blocked", nil)
	require.NoError(t, err, "ordinary 4xx responses must not be returned as errors")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestFetch_RetriesRetryableStatusThenSucceeds(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	res, err := f.Fetch(context.Background(), server.URL+"/flaky", &fetcher.FetchOptions{
		MaxRetries:    3,
		BackoffFactor: 0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestFetch_ExhaustedRetriesOnBlockingStatusSurfacesLastResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	res, err := f.Fetch(context.Background(), server.URL+"/flaky", &fetcher.FetchOptions{
		MaxRetries:    1,
		BackoffFactor: 0.01,
	})

	require.NoError(t, err, "exhausted retries on a retryable status must surface the response, not an error, so the blocking detector can classify it")
	require.NotNil(t, res)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Contains(t, string(res.Body), "rate limited")
}

func TestFetch_RejectsDisallowedScheme(t *testing.T) {
	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), "ftp://example.com/file", nil)
	require.Error(t, err)
}

func TestCanFetch_PermissiveWhenRobotsMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newTestFetcher(t)
	allowed, err := f.CanFetch(context.Background(), server.URL+"/anything")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFetch_RespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}))
	defer server.Close()

	f := newTestFetcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, server.URL+"/slow", nil)
	assert.Error(t, err)
}
