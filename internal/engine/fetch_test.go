package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchWithRetry(t *testing.T) {
	Init(Config{HTTPClient: &http.Client{Timeout: 5 * time.Second}, FetchTimeout: 5 * time.Second})

	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("User-Agent") == "" {
				t.Error("missing User-Agent")
			}
			w.Write([]byte("<transcript/>"))
		}))
		defer srv.Close()

		body, err := FetchWithRetry(context.Background(), nil, srv.URL, "text/xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "<transcript/>" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("gzip body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			gz.Write([]byte("compressed"))
			gz.Close()
		}))
		defer srv.Close()

		body, err := FetchWithRetry(context.Background(), nil, srv.URL, "text/xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "compressed" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("retries 503 then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		body, err := FetchWithRetry(context.Background(), nil, srv.URL, "text/xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "ok" || calls.Load() != 2 {
			t.Errorf("body = %q after %d calls", body, calls.Load())
		}
	})

	t.Run("404 is permanent", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := FetchWithRetry(context.Background(), nil, srv.URL, "text/xml")
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
			t.Fatalf("expected StatusError 404, got %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call, got %d", calls.Load())
		}
	})
}
