package httpx

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(retries int) *Client {
	c := NewClient(Options{Retries: retries, MinInterval: time.Millisecond, Timeout: 5 * time.Second})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := testClient(3).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
}

func TestStatus400IsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testClient(3).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get after retries: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestExhaustedRetriesReturnsError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(3).Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want exactly 3 attempts", calls.Load())
	}
}

func TestGzipBodyIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Error("client should advertise gzip")
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed payload"))
		gz.Close()
	}))
	defer srv.Close()

	body, err := testClient(1).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "compressed payload" {
		t.Errorf("body = %q", body)
	}
}

func TestContextCancelStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(Options{Retries: 3, MinInterval: time.Millisecond})
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	if _, err := c.Get(ctx, srv.URL); err == nil {
		t.Fatal("expected error on cancellation")
	}
}
