package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultClient_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := DefaultClient()
	_, _ = c.GetBody(context.Background(), server.URL)

	if gotUA != "outdated" {
		t.Errorf("default User-Agent = %q, want %q", gotUA, "outdated")
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(WithUserAgent("custom-agent/2.0"))
	_, _ = c.GetBody(context.Background(), server.URL)

	if gotUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom-agent/2.0")
	}
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"lodash","version":"4.17.21"}`))
	}))
	defer server.Close()

	var out struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	c := DefaultClient()
	if err := c.GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Name != "lodash" || out.Version != "4.17.21" {
		t.Errorf("unexpected decode result: %+v", out)
	}
}

func TestClient_ExtraHeaders(t *testing.T) {
	var gotCC string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCC = r.Header.Get("Cache-Control")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var out map[string]any
	c := DefaultClient()
	err := c.GetJSON(context.Background(), server.URL, &out, Header{Name: "Cache-Control", Value: "no-cache"})
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if gotCC != "no-cache" {
		t.Errorf("Cache-Control = %q, want %q", gotCC, "no-cache")
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(WithMaxRetries(5), WithBaseDelay(time.Millisecond))
	var out map[string]any
	if err := c.GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestClient_NoRetryOnNotFound(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(WithMaxRetries(5), WithBaseDelay(time.Millisecond))
	_, err := c.GetBody(context.Background(), server.URL)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if !httpErr.IsNotFound() {
		t.Errorf("expected IsNotFound, got status %d", httpErr.StatusCode)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestHTTPError_IsForbidden(t *testing.T) {
	err := &HTTPError{StatusCode: http.StatusForbidden, URL: "https://registry.npmjs.org/x"}
	if !err.IsForbidden() {
		t.Error("expected IsForbidden for 403")
	}
	if err.IsNotFound() {
		t.Error("403 should not report IsNotFound")
	}
}
